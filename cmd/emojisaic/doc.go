// Command emojisaic converts images, videos, and live camera feeds into
// emoji mosaics. Jobs run locally through an in-process queue; the live
// subcommand streams mosaic frames to disk and optionally to MQTT.
package main
