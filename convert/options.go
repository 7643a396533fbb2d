package convert

// Options configure the translator. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	// CircleSegments is the number of edges used when a circle demotes
	// to a polygonal boundary.
	CircleSegments int
	// DetectRectangles promotes axis-aligned five-vertex boundaries to
	// rectangles on the way to OASIS.
	DetectRectangles bool
	// ExpandIrregularRepetitions turns a placement with an offset-list
	// repetition into one structure reference per instance on the way
	// to GDSII. When disabled such placements fail with an
	// unsupported-feature error instead.
	ExpandIrregularRepetitions bool
}

// DefaultOptions returns the default translator configuration.
func DefaultOptions() *Options {
	return &Options{
		CircleSegments:             32,
		DetectRectangles:           true,
		ExpandIrregularRepetitions: true,
	}
}

func (o *Options) orDefault() *Options {
	if o == nil {
		return DefaultOptions()
	}
	return o
}
