package sidecar

type Config struct {
	// Name is the logical name of the sidecar executable. It is resolved
	// next to the host executable, then in Cwd, then on the PATH.
	Name string `conf:"name"`

	// Command overrides the resolution of Name with an explicit path or
	// command name.
	Command string `conf:"command"`

	// Args is the list of arguments to pass to the sidecar
	Args []string `conf:"args"`

	// Cwd is the working directory in which the sidecar is started
	Cwd string `conf:"cwd"`

	// Env is a map of environment variables merged over the
	// environment of the host process
	Env map[string]string `conf:"env"`

	// Autostart launches the sidecar when the application starts
	Autostart bool `conf:"autostart"`

	// ChunkSize is the maximum number of bytes forwarded per output event
	ChunkSize int `conf:"chunk_size"`

	// KeepStaleHandle keeps the handle of a sidecar that exited on its
	// own, so that Start reports it as running until Stop is called.
	KeepStaleHandle bool `conf:"keep_stale_handle"`
}

const (
	DefaultName      = "main"
	DefaultChunkSize = 4096
)
