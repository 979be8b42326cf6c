package cmd

import (
	"fmt"
	"time"

	"github.com/ThomasT75/uinput"
	"github.com/spf13/cobra"

	"github.com/flickwm/flick/internal/ipc"
	"github.com/flickwm/flick/internal/ui"
)

var (
	swipeDistance int
	swipeSteps    int
)

// injectSwipeCmd drives an edge swipe through a virtual uinput mouse.
// The compositor replays left-button drags as touch gestures, so a
// virtual pointer is enough to exercise the shell on a device without
// poking the touchscreen.
var injectSwipeCmd = &cobra.Command{
	Use:   "inject-swipe <left|right|top|bottom>",
	Short: "Inject an edge swipe into the running compositor",
	Long: `Create a virtual mouse via /dev/uinput and replay an edge swipe
from the named screen edge. Requires root for uinput access and a
running compositor to report the output size.`,
	Args: cobra.ExactArgs(1),
	RunE: runInjectSwipe,
}

func init() {
	injectSwipeCmd.Flags().IntVar(&swipeDistance, "distance", 300, "Swipe distance in pixels")
	injectSwipeCmd.Flags().IntVar(&swipeSteps, "steps", 10, "Number of motion steps")
}

func runInjectSwipe(cmd *cobra.Command, args []string) error {
	edge := args[0]
	switch edge {
	case "left", "right", "top", "bottom":
	default:
		return fmt.Errorf("unknown edge %q", edge)
	}

	client, err := ipc.NewClient()
	if err != nil {
		return fmt.Errorf("failed to create IPC client: %w", err)
	}
	status, err := client.SendStatus()
	if err != nil {
		return fmt.Errorf("compositor is not running: %w", err)
	}
	w, h := int(status.GetOutputWidth()), int(status.GetOutputHeight())
	if w == 0 || h == 0 {
		return fmt.Errorf("compositor has no output yet")
	}

	mouse, err := uinput.CreateMouse("/dev/uinput", []byte("Flick Swipe Injector"))
	if err != nil {
		return fmt.Errorf("failed to create virtual mouse: %w", err)
	}
	defer func() {
		if err := mouse.Close(); err != nil {
			fmt.Println(ui.WarningStyle.Render(fmt.Sprintf("close virtual mouse: %v", err)))
		}
	}()

	// Give the compositor time to pick the new device up; it scans
	// /dev/input every couple of seconds.
	time.Sleep(3 * time.Second)

	startX, startY, dx, dy := swipePath(edge, w, h, swipeDistance)

	// The compositor clamps the cursor to the output, so a huge move
	// pins it to the origin and makes the position deterministic.
	if err := mouse.Move(-32767, -32767); err != nil {
		return fmt.Errorf("failed to home cursor: %w", err)
	}
	if err := mouse.Move(int32(startX), int32(startY)); err != nil {
		return fmt.Errorf("failed to reach edge: %w", err)
	}

	if err := mouse.LeftPress(); err != nil {
		return fmt.Errorf("failed to press: %w", err)
	}
	for i := 0; i < swipeSteps; i++ {
		if err := mouse.Move(int32(dx/swipeSteps), int32(dy/swipeSteps)); err != nil {
			return fmt.Errorf("failed to move: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := mouse.LeftRelease(); err != nil {
		return fmt.Errorf("failed to release: %w", err)
	}

	fmt.Println(ui.SuccessStyle.Render("✓") +
		fmt.Sprintf(" injected %s edge swipe (%d px)", edge, swipeDistance))
	return nil
}

// swipePath returns the start point and total displacement of a swipe
// from the given edge toward the screen center.
func swipePath(edge string, w, h, distance int) (startX, startY, dx, dy int) {
	switch edge {
	case "left":
		return 1, h / 2, distance, 0
	case "right":
		return w - 1, h / 2, -distance, 0
	case "top":
		return w / 2, 1, 0, distance
	default: // bottom
		return w / 2, h - 1, 0, -distance
	}
}
