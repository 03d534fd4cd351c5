package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

// defaultPrompts is the visual-story card set: cover first, then cards 1-6.
// Position in the list is the slot index.
var defaultPrompts = []string{
	"Cover: A powerful, thought-provoking illustration showing a concerned parent looking at a child, with AI neural networks and digital transformation elements in the background. The scene represents the challenge of raising children in the AI era. Modern, clean, illustrative style with warm lighting. Full-bleed image with no borders or frames.",
	"Card 1: A dramatic visual showing traditional university diplomas, professional symbols (stethoscope, calculator, gavel, code) dissolving into digital particles, with a glowing AI neural network emerging. Represents how AI is disrupting traditional professions. Modern infographic style, clean composition. Full-bleed image with no borders or frames.",
	"Card 2: A powerful visual metaphor: a crowd of identical gray silhouettes standing together, with one vibrant, colorful, unique figure standing apart and glowing with energy. The unique figure is surrounded by small icons representing diverse skills and experiences. Illustrates how uniqueness beats conformity in AI era. Modern, clean, illustrative style. Full-bleed image with no borders or frames.",
	"Card 3: A young artisan carefully crafting a detailed miniature house model with tiny furniture and decorations. The scene shows the craftsmanship and creativity of a micro-landscape designer creating personalized memory pieces. Warm lighting, detailed workbench with tools. Modern, clean, illustrative style. Full-bleed image with no borders or frames.",
	"Card 4: A diverse group of people from different professions (teacher, security guard, chef, engineer, artist) connecting with a child through glowing lines of communication. Shows how diverse human connections expand a child's world. Warm, inviting atmosphere. Modern, clean, illustrative style. Full-bleed image with no borders or frames.",
	"Card 5: Students in a modern workshop working on real-world projects, creating prototypes and products. Shows the journey from idea to market launch with flowchart elements and arrows. Represents 'entrepreneurship from day one' education. Dynamic, energetic scene. Modern, clean, illustrative style. Full-bleed image with no borders or frames.",
	"Card 6: A child holding a smartphone with a glowing rulebook and digital keys floating around. Shows establishing a relationship with technology through rules and boundaries. A balance between freedom and structure. Warm, educational atmosphere. Modern, clean, illustrative style. Full-bleed image with no borders or frames.",
}

var ErrEmpty = errors.New("prompt list is empty")

// Default returns a copy of the built-in prompt list.
func Default() []string {
	out := make([]string, len(defaultPrompts))
	copy(out, defaultPrompts)
	return out
}

// Load reads a JSON array of prompt strings. An empty path returns Default().
func Load(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	var list []string
	if err := runstore.ReadJSON(path, &list); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	for i, p := range list {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("prompt %d in %s is blank", i, path)
		}
	}
	return list, nil
}
