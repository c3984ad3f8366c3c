package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_JSON(t *testing.T) {
	p := writeFile(t, "animal-data.json", `{
		"lion": {"name": "Lion", "habitat": "Savanna", "diet": "Carnivore", "endangered": "Vulnerable",
		         "summary": "Big cat", "funFacts": ["Roars", "Sleeps a lot"], "image": "/img/lion.jpg"},
		"zebra": {"name": "Zebra", "habitat": "Grassland", "diet": "Herbivore", "endangered": "Least Concern", "image": "/img/zebra.jpg"}
	}`)

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"lion", "zebra"}, c.Keys())

	lion, ok := c.Get("lion")
	require.True(t, ok)
	assert.Equal(t, "Lion", lion.Name)
	assert.Equal(t, []string{"Roars", "Sleeps a lot"}, lion.FunFacts)
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "animals.yaml", `
tiger:
  name: Tiger
  habitat: Forest
  diet: Carnivore
  endangered: Endangered
  funFacts:
    - Stripes are unique
  image: /img/tiger.jpg
`)

	c, err := Load(p)
	require.NoError(t, err)
	tiger, ok := c.Get("tiger")
	require.True(t, ok)
	assert.Equal(t, "Endangered", tiger.Endangered)
	assert.Equal(t, []string{"Stripes are unique"}, tiger.FunFacts)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "broken.json", `{"lion": `))
	require.Error(t, err)

	_, err = Load(writeFile(t, "noname.json", `{"lion": {"habitat": "Savanna"}}`))
	require.Error(t, err)
}
