package optimizer

import "strconv"

// Result is the outcome of processing one source file
type Result struct {
	Path    string
	Tier    Tier
	Quality int
	Outputs []string
	Err     error
}

// OK reports whether the file was processed without error
func (r Result) OK() bool {
	return r.Err == nil
}

// Summary tallies a batch run
type Summary struct {
	Succeeded     int
	Failed        int
	SVGCopied     int
	SVGFailed     int
	FaviconsDone  int
	FaviconFailed int
	Failures      []Result
}

// Add counts a raster file result
func (s *Summary) Add(r Result) {
	if r.OK() {
		s.Succeeded++
		return
	}
	s.Failed++
	s.Failures = append(s.Failures, r)
}

// Rows renders the summary as table rows: step, succeeded, failed
func (s Summary) Rows() [][]string {
	return [][]string{
		{"images", strconv.Itoa(s.Succeeded), strconv.Itoa(s.Failed)},
		{"svg", strconv.Itoa(s.SVGCopied), strconv.Itoa(s.SVGFailed)},
		{"favicons", strconv.Itoa(s.FaviconsDone), strconv.Itoa(s.FaviconFailed)},
	}
}
