package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flickwm/flick/internal/ipc"
	pb "github.com/flickwm/flick/internal/proto"
	"github.com/flickwm/flick/internal/ui"
)

var viewCmd = &cobra.Command{
	Use:   "view <lock|home|app|app_switcher|quick_settings>",
	Short: "Switch the shell to a view",
	Long:  `Ask the running compositor to switch its shell to the named view. The lock screen rejects switches until the compositor is unlocked.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, ok := parseViewArg(args[0])
		if !ok {
			return fmt.Errorf("unknown view %q", args[0])
		}

		client, err := ipc.NewClient()
		if err != nil {
			return fmt.Errorf("failed to create IPC client: %w", err)
		}

		status, err := client.SendView(target)
		if err != nil {
			return err
		}
		fmt.Println(ui.SuccessStyle.Render("✓") + " view is now " + viewName(status.GetView()))
		return nil
	},
}

func parseViewArg(name string) (pb.ShellView, bool) {
	switch name {
	case "lock":
		return pb.ShellView_LOCK, true
	case "home":
		return pb.ShellView_HOME, true
	case "app":
		return pb.ShellView_APP, true
	case "app_switcher":
		return pb.ShellView_APP_SWITCHER, true
	case "quick_settings":
		return pb.ShellView_QUICK_SETTINGS, true
	default:
		return pb.ShellView_SHELL_VIEW_UNSPECIFIED, false
	}
}
