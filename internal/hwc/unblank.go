package hwc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/flickwm/flick/internal/logger"
)

// FBIOBLANK with FB_BLANK_UNBLANK wakes the framebuffer console
const (
	fbioBlank      = 0x4611
	fbBlankUnblank = 0
)

// UnblankDisplay pokes every interface that can keep a phone panel
// dark: backlight sysfs, the framebuffer blank ioctl, and the graphics
// blank attribute. Each step is best-effort; handsets differ in which
// of them exist.
func UnblankDisplay() {
	unblankBacklights()
	unblankFramebuffer()

	if err := os.WriteFile("/sys/class/graphics/fb0/blank", []byte("0"), 0644); err != nil {
		logger.Debugf("Could not clear fb0 blank attribute: %v", err)
	}
}

func unblankBacklights() {
	entries, err := filepath.Glob("/sys/class/backlight/*")
	if err != nil || len(entries) == 0 {
		return
	}

	for _, dir := range entries {
		if err := os.WriteFile(filepath.Join(dir, "bl_power"), []byte("0"), 0644); err != nil {
			logger.Debugf("Could not power backlight %s: %v", dir, err)
		}

		brightnessPath := filepath.Join(dir, "brightness")
		data, err := os.ReadFile(brightnessPath)
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) == "0" {
			if err := os.WriteFile(brightnessPath, []byte("255"), 0644); err != nil {
				logger.Debugf("Could not raise brightness on %s: %v", dir, err)
			}
		}
	}
}

func unblankFramebuffer() {
	fd, err := unix.Open("/dev/fb0", unix.O_RDWR, 0)
	if err != nil {
		logger.Debugf("Could not open /dev/fb0: %v", err)
		return
	}
	defer unix.Close(fd)

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), fbioBlank, fbBlankUnblank); errno != 0 {
		logger.Debugf("FBIOBLANK failed: %v", errno)
	}
}

// fbVirtualSize reads the framebuffer size from sysfs, "width,height"
func fbVirtualSize() (int, int, error) {
	data, err := os.ReadFile("/sys/class/graphics/fb0/virtual_size")
	if err != nil {
		return 0, 0, err
	}

	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(data)), "%d,%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("unexpected virtual_size format %q: %w", strings.TrimSpace(string(data)), err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("implausible framebuffer size %dx%d", w, h)
	}
	return w, h, nil
}
