// Package ui renders the comparison view in the terminal with termdash:
// one rolling table of the top premium rows and a status line with feed
// and rate health.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/mum4k/termdash"
	"github.com/mum4k/termdash/cell"
	"github.com/mum4k/termdash/container"
	"github.com/mum4k/termdash/linestyle"
	"github.com/mum4k/termdash/terminal/tcell"
	"github.com/mum4k/termdash/terminal/terminalapi"
	"github.com/mum4k/termdash/widgets/text"

	"github.com/richrobo/whyup/internal/agg"
	"github.com/richrobo/whyup/internal/fx"
)

const (
	redrawInterval = 250 * time.Millisecond
	updateInterval = 500 * time.Millisecond
	maxRows        = 25
)

type Dashboard struct {
	agg     *agg.Aggregator
	fx      *fx.Provider
	base    string
	compare string

	table  *text.Text
	status *text.Text
}

func NewDashboard(aggr *agg.Aggregator, fxp *fx.Provider, base, compare string) *Dashboard {
	return &Dashboard{agg: aggr, fx: fxp, base: base, compare: compare}
}

// Run owns the terminal until ctx is cancelled or 'q' is pressed.
func (d *Dashboard) Run(ctx context.Context) error {
	term, err := tcell.New()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer term.Close()

	if d.table, err = text.New(text.RollContent(), text.WrapAtWords()); err != nil {
		return err
	}
	if d.status, err = text.New(text.RollContent()); err != nil {
		return err
	}

	root, err := container.New(term,
		container.SplitHorizontal(
			container.Top(
				container.Border(linestyle.Light),
				container.BorderTitle(fmt.Sprintf(" %s vs %s ", d.base, d.compare)),
				container.PlaceWidget(d.table),
			),
			container.Bottom(
				container.Border(linestyle.Light),
				container.BorderTitle(" status "),
				container.PlaceWidget(d.status),
			),
			container.SplitPercent(85),
		),
	)
	if err != nil {
		return fmt.Errorf("build layout: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go d.updateLoop(ctx)

	quitter := func(k *terminalapi.Keyboard) {
		if k.Key == 'q' || k.Key == 'Q' {
			cancel()
		}
	}
	return termdash.Run(ctx, term, root,
		termdash.KeyboardSubscriber(quitter),
		termdash.RedrawInterval(redrawInterval),
	)
}

func (d *Dashboard) updateLoop(ctx context.Context) {
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.redraw()
		}
	}
}

func (d *Dashboard) redraw() {
	rows := d.agg.PriceComparison(d.base, d.compare)
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	d.table.Reset()
	header := fmt.Sprintf("%-8s %14s %14s %9s %8s\n", "SYMBOL", "BASE", "COMPARE", "DIFF%", "24H%")
	_ = d.table.Write(header, text.WriteCellOpts(cell.Bold()))
	for _, row := range rows {
		comparePrice := "-"
		diff := "-"
		if row.ComparePrice > 0 {
			comparePrice = fmt.Sprintf("%14.0f", row.ComparePrice)
			diff = fmt.Sprintf("%8.2f%%", row.PriceDifferencePercent)
		}
		line := fmt.Sprintf("%-8s %14.0f %14s %9s %7.2f%%\n",
			row.Symbol, row.BasePrice, comparePrice, diff, row.ChangePercent24h)
		opts := text.WriteCellOpts(cell.FgColor(cell.ColorWhite))
		if row.PriceDifference > 0 {
			opts = text.WriteCellOpts(cell.FgColor(cell.ColorGreen))
		} else if row.PriceDifference < 0 {
			opts = text.WriteCellOpts(cell.FgColor(cell.ColorRed))
		}
		_ = d.table.Write(line, opts)
	}

	d.status.Reset()
	rate := d.fx.Status()
	state := "ready"
	if d.agg.Loading() {
		state = "loading"
	}
	line := fmt.Sprintf("state=%s rate=%.1f rows=%d", state, rate.Rate, len(rows))
	if msg := d.agg.Err(); msg != "" {
		line += " errors: " + msg
	}
	_ = d.status.Write(line)
}
