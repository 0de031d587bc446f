package customization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name string
		in   *Customization
		want int64
	}{
		{
			name: "nil",
			want: 0,
		},
		{
			name: "embroidery with short text",
			in:   &Customization{Customizations: []Descriptor{{Technique: "broderie", Text: "Hi"}}},
			want: 1200,
		},
		{
			name: "flock with image",
			in:   &Customization{Customizations: []Descriptor{{Technique: "flocage", ImageURL: "x"}}},
			want: 1200,
		},
		{
			name: "english aliases",
			in:   &Customization{Customizations: []Descriptor{{Technique: "embroidery"}, {Technique: "flock"}}},
			want: 1500,
		},
		{
			name: "print adds nothing",
			in:   &Customization{Customizations: []Descriptor{{Technique: "impression"}}},
			want: 0,
		},
		{
			name: "medium text tier",
			in:   &Customization{Customizations: []Descriptor{{Technique: "impression", Text: "Association 2024"}}},
			want: 300,
		},
		{
			name: "long text tier",
			in:   &Customization{Customizations: []Descriptor{{Text: "Club de football de Villeurbanne"}}},
			want: 500,
		},
		{
			name: "text length counts runes",
			in:   &Customization{Customizations: []Descriptor{{Text: "éééééééééé"}}},
			want: 200,
		},
		{
			name: "two faces",
			in: &Customization{Customizations: []Descriptor{
				{Face: "front", Technique: "broderie", Text: "Team"},
				{Face: "back", Technique: "flocage", ImageURL: "https://cdn/logo.png"},
			}},
			want: 1000 + 200 + 500 + 700,
		},
		{
			name: "unknown technique",
			in:   &Customization{Customizations: []Descriptor{{Technique: "laser"}}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.in))
		})
	}
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name string
		in   *Customization
		want bool
	}{
		{name: "nil", want: false},
		{name: "no descriptors", in: &Customization{}, want: false},
		{
			name: "all faces empty",
			in: &Customization{Customizations: []Descriptor{
				{Face: "front", Content: ContentText, Position: "coeur"},
				{Face: "back", Content: ContentImage, Position: "centre"},
			}},
			want: false,
		},
		{
			name: "text face complete",
			in: &Customization{Customizations: []Descriptor{
				{Face: "front", Content: ContentText, Text: "Team", Position: "coeur"},
			}},
			want: true,
		},
		{
			name: "image face complete",
			in: &Customization{Customizations: []Descriptor{
				{Face: "back", Content: ContentImage, ImageURL: "https://cdn/logo.png", Position: "centre"},
			}},
			want: true,
		},
		{
			name: "populated face without position",
			in: &Customization{Customizations: []Descriptor{
				{Face: "front", Content: ContentText, Text: "Team"},
			}},
			want: false,
		},
		{
			name: "image type carrying only text",
			in: &Customization{Customizations: []Descriptor{
				{Face: "front", Content: ContentImage, Text: "Team", Position: "coeur"},
			}},
			want: false,
		},
		{
			name: "one complete face and one empty face",
			in: &Customization{Customizations: []Descriptor{
				{Face: "front", Content: ContentText, Text: "Team", Position: "coeur"},
				{Face: "back", Content: ContentImage},
			}},
			want: true,
		},
		{
			name: "one complete face and one invalid face",
			in: &Customization{Customizations: []Descriptor{
				{Face: "front", Content: ContentText, Text: "Team", Position: "coeur"},
				{Face: "back", Content: ContentImage, Text: "oops"},
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplete(tt.in))
		})
	}
}

func TestKeyIsStableAndEmptyForNil(t *testing.T) {
	var nilCustom *Customization
	assert.Equal(t, "", nilCustom.Key())

	a := &Customization{Customizations: []Descriptor{{Technique: "broderie", Text: "A"}}}
	b := &Customization{Customizations: []Descriptor{{Technique: "broderie", Text: "A"}}}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEmpty(t, a.Key())
}

func TestScanRoundTripsJSONB(t *testing.T) {
	in := Customization{Customizations: []Descriptor{{Face: "front", Technique: "flocage", Text: "10", Position: "dos"}}}

	v, err := in.Value()
	require.NoError(t, err)

	var out Customization
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.True(t, out.IsEmpty())
}

func TestSummary(t *testing.T) {
	c := &Customization{Customizations: []Descriptor{
		{Face: "front", Technique: "embroidery", Text: "Team", Position: "coeur"},
		{Face: "back", Technique: "flocage", ImageURL: "x", Position: "centre"},
		{Face: "back"},
	}}
	assert.Equal(t, "Devant: broderie, texte « Team » (coeur) ; Dos: flocage, image (centre)", c.Summary())
}
