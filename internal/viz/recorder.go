package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	gifCharW = 8
	gifCharH = 16
)

// Recorder collects canvas frames and writes them as an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	delay  int // hundredths of a second per frame
}

func NewRecorder(delay int) *Recorder {
	if delay < 1 {
		delay = 1
	}
	return &Recorder{delay: delay}
}

func (r *Recorder) Frames() int { return len(r.frames) }

// Capture rasterises every braille dot of c as a white block.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*gifCharW, c.Height*gifCharH), color.Palette{color.Black, color.White})
	dotW, dotH := gifCharW/2, gifCharH/4

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - blank)
			if pattern <= 0 {
				continue
			}
			baseX, baseY := col*gifCharW, row*gifCharH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save writes the collected frames to path and forgets them.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	r.frames = nil
	return nil
}
