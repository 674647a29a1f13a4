package luck

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Band is a titled score range with a message shown alongside the score.
type Band struct {
	Min     int    `yaml:"min"`
	Max     int    `yaml:"max"`
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

// Bands is an ordered, gap-free partition of [0, 100].
type Bands []Band

type bandFile struct {
	Bands []Band `yaml:"bands"`
}

// LoadBands reads and validates a YAML band file.
//
// Postcondition: Returns bands covering [0, 100] in order, or a non-nil error.
func LoadBands(path string) (Bands, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bands file %s: %w", path, err)
	}
	return ParseBands(data)
}

// ParseBands decodes and validates YAML band data.
func ParseBands(data []byte) (Bands, error) {
	var f bandFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing bands: %w", err)
	}
	bands := Bands(f.Bands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	return bands, nil
}

// Validate checks that the bands partition [0, 100] without gaps or overlaps.
func (b Bands) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("bands: no bands defined")
	}
	next := 0
	for _, band := range b {
		if band.Title == "" {
			return fmt.Errorf("bands: band %d-%d has no title", band.Min, band.Max)
		}
		if band.Min != next {
			return fmt.Errorf("bands: expected a band starting at %d, got %d", next, band.Min)
		}
		if band.Max < band.Min {
			return fmt.Errorf("bands: band %d-%d is inverted", band.Min, band.Max)
		}
		next = band.Max + 1
	}
	if next != MaxScore+1 {
		return fmt.Errorf("bands: coverage ends at %d, want %d", next-1, MaxScore)
	}
	return nil
}

// For returns the band containing score. Scores outside [0, 100] are clamped.
//
// Precondition: b passed Validate.
func (b Bands) For(score int) Band {
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}
	i := sort.Search(len(b), func(i int) bool { return b[i].Max >= score })
	return b[i]
}

// DefaultBands is used when no band file is configured.
func DefaultBands() Bands {
	return Bands{
		{Min: 0, Max: 9, Title: "Abysmal", Message: "Stay in bed. Nothing good is coming today."},
		{Min: 10, Max: 29, Title: "Poor", Message: "Keep your head down and your plans small."},
		{Min: 30, Max: 49, Title: "Fair", Message: "An ordinary day. Ordinary is fine."},
		{Min: 50, Max: 69, Title: "Good", Message: "Things lean your way today."},
		{Min: 70, Max: 89, Title: "Great", Message: "Take the shot."},
		{Min: 90, Max: 99, Title: "Excellent", Message: "Almost nothing can go wrong."},
		{Min: 100, Max: 100, Title: "Jackpot", Message: "Perfect luck. Remember this day."},
	}
}
