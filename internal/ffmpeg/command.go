package ffmpeg

// BuildDecodeArgs returns the ffmpeg arguments that decode every frame of
// the first video stream of input to raw RGB24 on stdout.
func BuildDecodeArgs(input, filter string) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-v", "error",
		"-i", input,
		"-map", "0:v:0",
		"-an", "-sn", "-dn",
	}
	if filter != "" {
		args = append(args, "-vf", filter)
	}
	return append(args,
		"-fps_mode", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
}
