package commands

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lambda-feedback/deskshell/internal/bridge"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrUnknownCommand = errors.New("unknown command")

// Response is the body returned for every command invocation.
type Response struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type CommandHandlerParams struct {
	fx.In

	Commands *Commands
	Config   bridge.Config
	Log      *zap.Logger
}

func NewCommandHandler(params CommandHandlerParams) *CommandHandler {
	return &CommandHandler{
		commands: params.Commands,
		authKey:  params.Config.AuthKey,
		log:      params.Log,
	}
}

// CommandHandler invokes the command named by the {command} path value.
type CommandHandler struct {
	commands *Commands
	authKey  string
	log      *zap.Logger
}

func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	command := r.PathValue("command")

	log := h.log.With(
		zap.String("command", command),
		zap.String("method", r.Method),
	)

	// Check for authorization
	if h.authKey != "" && r.Header.Get("api-key") != h.authKey {
		log.Debug("unauthorized request")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		log.Debug("method not allowed")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	message, err := h.invoke(r, command)
	if errors.Is(err, ErrUnknownCommand) {
		log.Debug("unknown command")
		writeResponse(w, http.StatusNotFound, Response{Message: err.Error()}, log)
		return
	}

	if err != nil {
		log.Info("command failed", zap.Error(err))
		writeResponse(w, http.StatusInternalServerError, Response{Message: err.Error()}, log)
		return
	}

	log.Debug("command succeeded", zap.String("message", message))
	writeResponse(w, http.StatusOK, Response{Ok: true, Message: message}, log)
}

func (h *CommandHandler) invoke(r *http.Request, command string) (string, error) {
	ctx := r.Context()

	switch command {
	case StartSidecarCommand:
		return h.commands.StartSidecar(ctx)
	case ShutdownSidecarCommand:
		return h.commands.ShutdownSidecar(ctx)
	case ToggleFullscreenCommand:
		h.commands.ToggleFullscreen(ctx)
		return "", nil
	}

	return "", ErrUnknownCommand
}

func writeResponse(w http.ResponseWriter, status int, res Response, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Debug("failed to write response", zap.Error(err))
	}
}
