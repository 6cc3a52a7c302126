package command

import (
	"github.com/samber/oops"

	"quakecraft.ai/internal/protocol"
)

const fallbackMessage = "Something went wrong. Try again."

// ErrUsage is a bad-arguments error whose player-facing text is message.
func ErrUsage(cmd, message string) error {
	return oops.Code(protocol.ErrBadRequest).
		In("command").
		With("command", cmd).
		With("message", message).
		Errorf("%s", message)
}

func ErrUnknownCommand(cmd string) error {
	return oops.Code(protocol.ErrNotFound).
		In("command").
		With("command", cmd).
		With("message", "Unknown command: /"+cmd).
		Errorf("unknown command: %s", cmd)
}

// Internal wraps a failure the player cannot fix.
func Internal(cmd string, cause error) error {
	return oops.Code(protocol.ErrInternal).
		In("command").
		With("command", cmd).
		Wrap(cause)
}

// Code returns the protocol error code carried by err, E_INTERNAL for foreign errors.
func Code(err error) string {
	if oe, ok := oops.AsOops(err); ok {
		if c, ok := any(oe.Code()).(string); ok && c != "" {
			return c
		}
	}
	return protocol.ErrInternal
}

// PlayerMessage extracts the player-facing text from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return fallbackMessage
	}
	oe, ok := oops.AsOops(err)
	if !ok {
		return fallbackMessage
	}
	if msg, ok := oe.Context()["message"].(string); ok && msg != "" {
		return msg
	}
	if oe.Code() == protocol.ErrInternal {
		return "Command error: " + oe.Error()
	}
	return fallbackMessage
}

func ErrNoPermission(cmd string) error {
	return oops.Code(protocol.ErrNoPermission).
		In("command").
		With("command", cmd).
		With("message", "You don't have permission to do that.").
		Errorf("permission denied for command %s", cmd)
}
