package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/tgadmin/internal/menu"
	"github.com/aretw0/tgadmin/internal/presentation/tui"
	"github.com/aretw0/tgadmin/internal/tree"
	"github.com/aretw0/tgadmin/pkg/domain"
)

// InspectOptions contains the configuration for the inspect command.
type InspectOptions struct {
	Path    string
	Address string
	// Plain prints raw markdown instead of terminal styling.
	Plain bool
	Width int
	Out   io.Writer
}

// RunInspect prints the menu an operator would see at Address.
func RunInspect(opts InspectOptions) error {
	doc, err := tree.Load(opts.Path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", opts.Path, err)
	}

	addr := domain.Root
	if opts.Address != "" {
		if addr, err = domain.ParsePath(opts.Address); err != nil {
			return err
		}
	}

	var m menu.Menu
	if err := doc.View(func(root domain.Value) error {
		var err error
		m, err = menu.Render(root, addr)
		return err
	}); err != nil {
		return err
	}

	md := tui.MenuMarkdown(m)
	if opts.Plain {
		_, err := io.WriteString(opts.Out, md)
		return err
	}

	render, err := tui.NewRenderer(opts.Width)
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("failed to render menu: %w", err)
	}
	_, err = io.WriteString(opts.Out, out)
	return err
}
