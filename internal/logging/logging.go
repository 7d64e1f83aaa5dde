// Package logging builds the structured logger shared by the service objects.
package logging

import (
	"context"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
	"github.com/kart-io/logger/option"

	"docqa/internal/config"
)

// New creates a logger from the log section of the application config.
func New(cfg config.LogConfig) (core.Logger, error) {
	opt := option.DefaultLogOption()
	opt.Engine = cfg.Engine
	opt.Level = cfg.Level
	opt.Format = cfg.Format
	opt.OutputPaths = []string{"stderr"}
	opt.InitialFields = map[string]interface{}{
		"service.name": "docqa",
	}
	return logger.New(opt)
}

// Nop returns a logger that discards everything.
func Nop() core.Logger { return nop{} }

// kart-io/logger v0.2.2 ships no no-op core.Logger, hence this one.
type nop struct{}

func (nop) Debug(...interface{}) {}
func (nop) Info(...interface{}) {}
func (nop) Warn(...interface{}) {}
func (nop) Error(...interface{}) {}
func (nop) Fatal(...interface{}) {}
func (nop) Debugf(string, ...interface{}) {}
func (nop) Infof(string, ...interface{}) {}
func (nop) Warnf(string, ...interface{}) {}
func (nop) Errorf(string, ...interface{}) {}
func (nop) Fatalf(string, ...interface{}) {}
func (nop) Debugw(string, ...interface{}) {}
func (nop) Infow(string, ...interface{}) {}
func (nop) Warnw(string, ...interface{}) {}
func (nop) Errorw(string, ...interface{}) {}
func (nop) Fatalw(string, ...interface{}) {}
func (n nop) With(...interface{}) core.Logger { return n }
func (n nop) WithCtx(context.Context, ...interface{}) core.Logger { return n }
func (n nop) WithCallerSkip(int) core.Logger { return n }
func (nop) SetLevel(core.Level) {}
func (nop) Flush() error { return nil }
