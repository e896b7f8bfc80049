package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	imagecropper "github.com/menta2k/image-cropper"
)

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(imagecropper.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
