package renderer

import "time"

// RenderStats contains statistics about one render
type RenderStats struct {
	TotalPixels int           // Pixels traced
	Hits        int           // Primary rays that hit an object
	Misses      int           // Primary rays that took the background color
	ShadowRays  int           // Shadow rays cast toward lights
	Occluded    int           // Shadow rays blocked before reaching their light
	Tiles       int           // Tiles rendered
	Duration    time.Duration // Wall time of the render
}

// merge adds the counters of other into s. Duration is left alone.
func (s *RenderStats) merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.Hits += other.Hits
	s.Misses += other.Misses
	s.ShadowRays += other.ShadowRays
	s.Occluded += other.Occluded
	s.Tiles += other.Tiles
}

// HitRatio returns the fraction of primary rays that hit geometry
func (s RenderStats) HitRatio() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalPixels)
}
