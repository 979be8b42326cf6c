package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flickwm/flick/internal/ipc"
	pb "github.com/flickwm/flick/internal/proto"
	"github.com/flickwm/flick/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running compositor",
	Long:  `Query the running compositor over its control socket: current shell view, transition state, output mode, and frame counters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ipc.NewClient()
		if err != nil {
			return fmt.Errorf("failed to create IPC client: %w", err)
		}

		status, err := client.SendStatus()
		if err != nil {
			fmt.Println(ui.FormatStatus(false, "Compositor is not running"))
			return nil
		}

		var output strings.Builder
		output.WriteString(ui.FormatAppHeader("STATUS", status.GetSocket()))
		output.WriteString("\n")

		var body strings.Builder
		body.WriteString(ui.FormatStatus(true, "Running"))
		body.WriteString("\n")
		body.WriteString(ui.FormatField("View", viewName(status.GetView())))
		if status.GetTransitioning() {
			body.WriteString(ui.WarningStyle.Render(
				fmt.Sprintf(" (transitioning, %.0f%%)", status.GetProgress()*100)))
		}
		body.WriteString("\n")
		body.WriteString(ui.FormatField("Output",
			fmt.Sprintf("%dx%d", status.GetOutputWidth(), status.GetOutputHeight())))
		body.WriteString("\n")
		body.WriteString(ui.FormatField("Windows", fmt.Sprintf("%d", status.GetViewCount())))
		body.WriteString("\n")
		body.WriteString(ui.FormatField("Frames", fmt.Sprintf("%d", status.GetFrameCount())))
		if status.GetErrorCount() > 0 {
			body.WriteString("\n")
			body.WriteString(ui.ErrorStyle.Render(
				fmt.Sprintf("Present errors: %d", status.GetErrorCount())))
		}

		output.WriteString(ui.BoxStyle.Render(body.String()))
		fmt.Println(output.String())
		return nil
	},
}

func viewName(v pb.ShellView) string {
	switch v {
	case pb.ShellView_LOCK:
		return "lock"
	case pb.ShellView_HOME:
		return "home"
	case pb.ShellView_APP:
		return "app"
	case pb.ShellView_APP_SWITCHER:
		return "app_switcher"
	case pb.ShellView_QUICK_SETTINGS:
		return "quick_settings"
	default:
		return "unknown"
	}
}
