package rq

// MedianFilter builds a single-stage low-pass Pipeline computing the
// rolling median over the given window, matching the convenience
// constructor `medfilt` supplies in the original implementation. It is
// equivalent to:
//
//	stage, _ := rq.LowPass(window).Build()
//	pipeline, _ := rq.NewPipeline(stage)
func MedianFilter(window int) (*Pipeline, error) {
	stage, err := LowPass(window).Build()
	if err != nil {
		return nil, err
	}
	return NewPipeline(stage)
}
