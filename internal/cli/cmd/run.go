package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dawaltconley/zotero-center-pdf/internal/attach"
	"github.com/dawaltconley/zotero-center-pdf/internal/cli/model"
	"github.com/dawaltconley/zotero-center-pdf/internal/host"
	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
	"github.com/dawaltconley/zotero-center-pdf/internal/webkitdom"
)

var runMonitorFlag bool

var runCmd = &cobra.Command{
	Use:   "run [uri]",
	Short: "Launch the plugin against a viewer page",
	Long: `Open a webview on the given URI (default: the configured root URI) and
attach the centering controller to every reader surface it renders.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var monitorCmd = &cobra.Command{
	Use:   "monitor [uri]",
	Short: "Run with a live attachment dashboard",
	Long: `Same as 'run', with a terminal dashboard showing each surface's
attachment state as it changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runMonitorFlag = true
		return runRun(cmd, args)
	},
}

func runRun(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(app.Context())
	defer cancel()

	uri := app.Config.RootURI
	if len(args) == 1 {
		uri = args[0]
	}

	facility := host.NewFacility(app.Logger)

	var (
		notices  chan attach.Notice
		ctrlOpts []attach.Option
	)
	if runMonitorFlag {
		notices = make(chan attach.Notice, 64)
		ctrlOpts = append(ctrlOpts, attach.WithNotify(func(n attach.Notice) {
			select {
			case notices <- n:
			default: // monitor lagging; drop rather than stall the loop
			}
		}))
	}

	controller := attach.NewController(facility, app.Config.ID, app.Logger, ctrlOpts...)

	bridge, err := webkitdom.NewBridge(ctx, facility, app.Config.Stylesheet, app.Logger)
	if err != nil {
		return fmt.Errorf("create bridge: %w", err)
	}
	bridge.OnNavigated = func(id host.SurfaceID) {
		logging.Pluginf(ctx, "viewer on surface %d reported navigation", id)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return facility.Run(gctx)
	})
	if err := app.Manager.Watch(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	if err := controller.Start(gctx); err != nil {
		return fmt.Errorf("start controller: %w", err)
	}
	defer func() {
		if err := controller.Stop(); err != nil {
			app.Logger.Warn().Err(err).Msg("controller stop failed")
		}
	}()

	if runMonitorFlag {
		g.Go(func() error {
			defer cancel() // quitting the dashboard shuts everything down
			p := tea.NewProgram(model.NewMonitorModel(app.Theme, notices))
			_, err := p.Run()
			return err
		})
	}

	viewer := webkitdom.NewViewerApp(bridge, uri)
	code := viewer.Run(gctx, []string{os.Args[0]})

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if code != 0 {
		return fmt.Errorf("viewer exited with code %d", code)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(monitorCmd)
}
