package scene

// ScreenRect maps a quad placed by t into screen space for a window of the
// given size: top-left corner and extent, Y down. Negative scale mirrors the
// quad, which for a flat rectangle only changes its extent's sign.
func ScreenRect(q Quad, t Transform, width, height float32) (x, y, w, h float32) {
	w = abs(q.Size.X * t.Scale.X)
	h = abs(q.Size.Y * t.Scale.Y)
	cx := width/2 + t.Translation.X
	cy := height/2 - t.Translation.Y
	return cx - w/2, cy - h/2, w, h
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
