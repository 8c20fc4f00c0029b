package chart

import (
	"context"
	"sync"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

// Displayer presents a chart to the user. It is the only place where a
// chart leaves the process other than Save.
type Displayer interface {
	Display(ctx context.Context, c Chart) error
}

// DisplayerFunc adapts a function to Displayer.
type DisplayerFunc func(ctx context.Context, c Chart) error

// Display implements Displayer.
func (f DisplayerFunc) Display(ctx context.Context, c Chart) error {
	return f(ctx, c)
}

// LogDisplayer reports each displayed chart through the structured logger.
// It is the default in headless environments.
type LogDisplayer struct {
	Logger log.Logger
}

// Display implements Displayer.
func (d LogDisplayer) Display(_ context.Context, c Chart) error {
	logger := d.Logger
	if logger == nil {
		logger = log.GetLoggerWithName("chart")
	}
	logger.Info("Chart ready", "chart.title", c.ChartTitle())
	return nil
}

// NopDisplayer discards charts.
type NopDisplayer struct{}

// Display implements Displayer.
func (NopDisplayer) Display(context.Context, Chart) error { return nil }

var (
	displayerMu      sync.RWMutex
	defaultDisplayer Displayer = LogDisplayer{}
)

// SetDefaultDisplayer replaces the Displayer used by Show and returns the
// previous one.
func SetDefaultDisplayer(d Displayer) Displayer {
	displayerMu.Lock()
	defer displayerMu.Unlock()
	prev := defaultDisplayer
	defaultDisplayer = d
	return prev
}

func getDefaultDisplayer() Displayer {
	displayerMu.RLock()
	defer displayerMu.RUnlock()
	return defaultDisplayer
}

// Show は WithSavePath が指定されていれば図を保存し、その後 Displayer に渡します。
// 保存に失敗した場合は表示しません。
func Show(ctx context.Context, c Chart, opts ...Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := newOptions(opts)

	if o.savePath != "" {
		path, err := Save(c, o.savePath, opts...)
		if err != nil {
			return err
		}
		log.GetLoggerWithName("chart").Info("Saved chart",
			log.OperationKey, log.OperationRender,
			log.PathKey, path,
			"chart.title", c.ChartTitle(),
		)
	}

	d := o.displayer
	if d == nil {
		d = getDefaultDisplayer()
	}
	if d == nil {
		return nil
	}
	if err := d.Display(ctx, c); err != nil {
		return errors.Wrapf(err, "display %q", c.ChartTitle())
	}
	return nil
}
