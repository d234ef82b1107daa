package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/1siamBot/rts-flowfield/engine/render"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// InputState tracks mouse and keyboard state per frame
type InputState struct {
	// Mouse
	MouseX, MouseY   int
	MouseDX, MouseDY int // delta since last frame
	prevMouseX       int
	prevMouseY       int
	LeftJustPressed  bool
	RightJustPressed bool
	MiddlePressed    bool
	ScrollY          float64
}

func NewInputState() *InputState {
	return &InputState{}
}

// Update should be called every frame
func (s *InputState) Update() {
	s.prevMouseX = s.MouseX
	s.prevMouseY = s.MouseY
	s.MouseX, s.MouseY = ebiten.CursorPosition()
	s.MouseDX = s.MouseX - s.prevMouseX
	s.MouseDY = s.MouseY - s.prevMouseY

	s.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.RightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	s.MiddlePressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	_, s.ScrollY = ebiten.Wheel()
}

// IsKeyJustPressed returns true if key was just pressed this frame
func (s *InputState) IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}

// Cursor returns the ground-plane world position under the mouse
func (s *InputState) Cursor(cam *render.Camera) vmath.Vec3 {
	return cam.ScreenToWorld(s.MouseX, s.MouseY)
}

// DriveCamera pans with WASD, the arrow keys or a middle-button drag, and
// zooms towards the cursor with the wheel
func (s *InputState) DriveCamera(cam *render.Camera, dt float64) {
	step := cam.Speed * dt
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		cam.Pan(0, -step)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		cam.Pan(0, step)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		cam.Pan(-step, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		cam.Pan(step, 0)
	}
	if s.MiddlePressed {
		cam.Pan(-float64(s.MouseDX), -float64(s.MouseDY))
	}
	if s.ScrollY != 0 {
		factor := 1.1
		if s.ScrollY < 0 {
			factor = 1 / factor
		}
		cam.ZoomAt(factor, s.MouseX, s.MouseY)
	}
}
