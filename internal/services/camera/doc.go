// Package camera wraps the capture collaborator: single-frame grabs from a
// V4L2 device through ffmpeg, plus a udev hotplug monitor that tracks
// whether the configured device is present.
package camera
