package juxtapose

import (
	"context"

	"github.com/user/hemostyle/pkg/adapters/logger"
	"github.com/user/hemostyle/pkg/adapters/osfilesystem"
)

// CombineFiles writes a before and after comparison of two photo files.
// This is a convenience function that uses default adapters.
// For custom dependencies (e.g., custom logger), use the Stage API instead.
//
// Example using Stage API with custom logger:
//
//	stage := juxtapose.New(osfilesystem.New(), myCustomLogger, juxtapose.DefaultOptions())
//	result, err := stage.Execute(ctx, juxtapose.Input{
//	    BeforePath: "portrait.jpg",
//	    AfterPath:  "portrait-styled.png",
//	    OutputPath: "compare.png",
//	})
func CombineFiles(beforePath, afterPath, outputPath string, opts Options) error {
	stage := New(osfilesystem.New(), logger.NewNoop(), opts)
	_, err := stage.Execute(context.Background(), Input{
		BeforePath: beforePath,
		AfterPath:  afterPath,
		OutputPath: outputPath,
	})
	return err
}
