// internal/domain/customization/customization.go
package customization

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Technique is the marking technique applied to a face
type Technique string

const (
	TechniqueEmbroidery Technique = "broderie"
	TechniqueFlock      Technique = "flocage"
	TechniquePrint      Technique = "impression"
)

// ContentType tells which content field a descriptor requires
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// Surcharges in minor currency units
const (
	EmbroiderySurcharge int64 = 1000
	FlockSurcharge      int64 = 500
	ImageSurcharge      int64 = 700

	shortTextSurcharge  int64 = 200
	mediumTextSurcharge int64 = 300
	longTextSurcharge   int64 = 500
)

// Descriptor is the marking specification of a single face
type Descriptor struct {
	Face      string      `json:"face,omitempty"`
	Technique Technique   `json:"type_impression,omitempty"`
	Position  string      `json:"position,omitempty"`
	Content   ContentType `json:"type,omitempty"`
	Text      string      `json:"texte,omitempty"`
	Font      string      `json:"police,omitempty"`
	Color     string      `json:"couleur,omitempty"`
	ImageURL  string      `json:"image_url,omitempty"`
}

// Customization groups the per-face descriptors of a cart line.
// It is stored as jsonb on cart and order items.
type Customization struct {
	Customizations []Descriptor `json:"customizations"`
}

// NormalizeTechnique maps French and English technique names to a Technique
func NormalizeTechnique(t Technique) Technique {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "broderie", "embroidery":
		return TechniqueEmbroidery
	case "flocage", "flock":
		return TechniqueFlock
	case "impression", "print":
		return TechniquePrint
	default:
		return t
	}
}

// Price returns the surcharge added to the unit price of a customized line.
// Unknown techniques and missing fields contribute nothing.
func Price(c *Customization) int64 {
	if c == nil {
		return 0
	}

	var total int64
	for _, d := range c.Customizations {
		switch NormalizeTechnique(d.Technique) {
		case TechniqueEmbroidery:
			total += EmbroiderySurcharge
		case TechniqueFlock:
			total += FlockSurcharge
		}

		if text := strings.TrimSpace(d.Text); text != "" {
			total += textSurcharge(text)
		}

		if strings.TrimSpace(d.ImageURL) != "" {
			total += ImageSurcharge
		}
	}
	return total
}

func textSurcharge(text string) int64 {
	n := utf8.RuneCountInString(text)
	switch {
	case n <= 10:
		return shortTextSurcharge
	case n <= 20:
		return mediumTextSurcharge
	default:
		return longTextSurcharge
	}
}

// IsComplete reports whether the customization can be ordered: at least one
// face is populated and every populated face carries its required content
// and a position.
func IsComplete(c *Customization) bool {
	if c == nil || len(c.Customizations) == 0 {
		return false
	}

	populated := 0
	for _, d := range c.Customizations {
		if !d.populated() {
			continue
		}
		if !d.valid() {
			return false
		}
		populated++
	}
	return populated > 0
}

func (d Descriptor) populated() bool {
	return strings.TrimSpace(d.Text) != "" || strings.TrimSpace(d.ImageURL) != ""
}

func (d Descriptor) valid() bool {
	if strings.TrimSpace(d.Position) == "" {
		return false
	}
	switch d.Content {
	case ContentImage:
		return strings.TrimSpace(d.ImageURL) != ""
	case ContentText:
		return strings.TrimSpace(d.Text) != ""
	default:
		// untyped descriptors are accepted when they carry any content
		return d.populated()
	}
}

// IsEmpty returns true when there is nothing to apply
func (c *Customization) IsEmpty() bool {
	return c == nil || len(c.Customizations) == 0
}

// Key returns a stable serialized form used to compare cart lines
func (c *Customization) Key() string {
	if c.IsEmpty() {
		return ""
	}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

// Summary returns a short human readable description, e.g.
// "Devant: broderie, texte « Team » (cœur)"
func (c *Customization) Summary() string {
	if c.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(c.Customizations))
	for _, d := range c.Customizations {
		if !d.populated() {
			continue
		}
		var b strings.Builder
		b.WriteString(faceLabel(d.Face))
		b.WriteString(": ")
		b.WriteString(string(NormalizeTechnique(d.Technique)))
		if t := strings.TrimSpace(d.Text); t != "" {
			fmt.Fprintf(&b, ", texte « %s »", t)
		}
		if strings.TrimSpace(d.ImageURL) != "" {
			b.WriteString(", image")
		}
		if d.Position != "" {
			fmt.Fprintf(&b, " (%s)", d.Position)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " ; ")
}

func faceLabel(face string) string {
	switch strings.ToLower(face) {
	case "back", "dos":
		return "Dos"
	case "front", "devant", "":
		return "Devant"
	default:
		return face
	}
}

// Value implements driver.Valuer
func (c Customization) Value() (driver.Value, error) {
	if len(c.Customizations) == 0 {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner
func (c *Customization) Scan(value interface{}) error {
	if value == nil {
		*c = Customization{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("customization: unsupported scan type %T", value)
	}
	if len(data) == 0 {
		*c = Customization{}
		return nil
	}
	return json.Unmarshal(data, c)
}
