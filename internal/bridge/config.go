package bridge

type Config struct {
	// Host is the address the bridge listens on
	Host string `conf:"host"`

	// Port is the port the bridge listens on
	Port int `conf:"port"`

	// H2c enables HTTP/2 cleartext upgrade
	H2c bool `conf:"h2c"`

	// AuthKey is required in the api-key header of command
	// requests, if set
	AuthKey string `conf:"auth_key"`

	// Buffer is the number of events queued per subscriber
	// before events are dropped
	Buffer int `conf:"buffer"`
}

const DefaultBuffer = 256
