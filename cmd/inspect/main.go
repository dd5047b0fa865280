// inspect runs the hazard detectors over a single image and reports
// what the pipeline would see. Useful for tuning detector parameters
// against photos of a problem intersection.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"gocv.io/x/gocv"

	"github.com/guidewalk/go-guidewalk/internal/log"
	"github.com/guidewalk/go-guidewalk/pkg/detect"
	"github.com/guidewalk/go-guidewalk/pkg/fusion"
	"github.com/guidewalk/go-guidewalk/pkg/hazard"
	"github.com/guidewalk/go-guidewalk/pkg/pipeline"
	"github.com/guidewalk/go-guidewalk/pkg/render"
	"github.com/guidewalk/go-guidewalk/pkg/threat"
)

func main() {
	imagePath := flag.String("image", "", "Image file to analyze (required)")
	modelPath := flag.String("model", detect.DefaultYOLOConfig().ModelPath, "ONNX model path")
	noModel := flag.Bool("no-model", false, "Skip the object detection model")
	outPath := flag.String("out", "", "Write the annotated image here")
	flag.Parse()

	log.Init("info")

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "inspect: -image is required")
		os.Exit(2)
	}

	mat := gocv.IMRead(*imagePath, gocv.IMReadColor)
	if mat.Empty() {
		fmt.Fprintf(os.Stderr, "inspect: cannot read %s\n", *imagePath)
		os.Exit(1)
	}
	frame := detect.NewFrame(mat, 1, time.Now())
	defer frame.Close()

	cfg := pipeline.DefaultConfig()
	detectors := []detect.Detector{
		detect.NewStairDetector(cfg.Stairs),
		detect.NewPotholeDetector(cfg.Potholes),
	}
	if !*noModel {
		yoloCfg := detect.DefaultYOLOConfig()
		yoloCfg.ModelPath = *modelPath
		yolo, err := detect.NewYOLO(yoloCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "inspect: model skipped: %v\n", err)
		} else {
			detectors = append(detectors, detect.NewModelAdapter(yolo, cfg.Adapter))
		}
	}
	defer func() {
		for _, d := range detectors {
			d.Close()
		}
	}()

	ctx := context.Background()
	lists := make([][]hazard.Detection, 0, len(detectors))
	for _, d := range detectors {
		dets, err := d.Detect(ctx, frame)
		if err != nil {
			fmt.Fprintf(os.Stderr, "inspect: %s failed: %v\n", d.Name(), err)
			continue
		}
		lists = append(lists, dets)
	}

	merged := fusion.Merge(cfg.Fusion, lists...)
	assessments := cfg.Threat.Assess(merged, cfg.Proximity, frame.Width, frame.Height)
	selected := cfg.Threat.Select(assessments)

	report := struct {
		Image       string              `json:"image"`
		Assessments []threat.Assessment `json:"assessments"`
		Selected    *threat.Assessment  `json:"selected,omitempty"`
	}{
		Image:       *imagePath,
		Assessments: assessments,
		Selected:    selected,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "inspect: encode report: %v\n", err)
		os.Exit(1)
	}

	if *outPath != "" {
		annotated := frame.Mat.Clone()
		defer annotated.Close()
		render.Assessments(&annotated, assessments, selected)
		if ok := gocv.IMWrite(*outPath, annotated); !ok {
			fmt.Fprintf(os.Stderr, "inspect: cannot write %s\n", *outPath)
			os.Exit(1)
		}
	}
}
