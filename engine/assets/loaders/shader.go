package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// ShaderManifest is the TOML description of a shader program. Stage files
// are relative to the manifest.
//
//	label = "basic"
//	[vs]
//	file = "basic.vert"
//	entry = "main"
//	uniform_blocks = [64]
//	[fs]
//	file = "basic.frag"
type ShaderManifest struct {
	Label string               `toml:"label"`
	VS    *ShaderStageManifest `toml:"vs"`
	FS    *ShaderStageManifest `toml:"fs"`
	CS    *ShaderStageManifest `toml:"cs"`
}

type ShaderStageManifest struct {
	File string `toml:"file"`
	// Entry defaults to "main".
	Entry         string `toml:"entry"`
	UniformBlocks []int  `toml:"uniform_blocks"`
}

// LoadShader parses a manifest and reads the stage files it names from dir.
// Files ending in .spv are loaded as bytecode, anything else as source.
func LoadShader(data []byte, dir string) (*metadata.ShaderDesc, error) {
	var m ShaderManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.CS == nil && (m.VS == nil || m.FS == nil) {
		return nil, fmt.Errorf("shader manifest needs either vs and fs or cs")
	}

	desc := &metadata.ShaderDesc{Label: m.Label}
	for _, st := range []struct {
		manifest *ShaderStageManifest
		desc     *metadata.ShaderStageDesc
	}{
		{m.VS, &desc.VS},
		{m.FS, &desc.FS},
		{m.CS, &desc.CS},
	} {
		if st.manifest == nil {
			continue
		}
		if err := loadShaderStage(dir, st.manifest, st.desc); err != nil {
			return nil, err
		}
	}
	return desc, nil
}

func loadShaderStage(dir string, m *ShaderStageManifest, desc *metadata.ShaderStageDesc) error {
	if m.File == "" {
		return fmt.Errorf("shader stage without a file")
	}
	if len(m.UniformBlocks) > metadata.MaxShaderStageUniformBlocks {
		return fmt.Errorf("%s: %d uniform blocks, maximum is %d", m.File, len(m.UniformBlocks), metadata.MaxShaderStageUniformBlocks)
	}

	code, err := os.ReadFile(filepath.Join(dir, m.File))
	if err != nil {
		return err
	}
	if filepath.Ext(m.File) == ".spv" {
		desc.Bytecode = code
	} else {
		desc.Source = code
	}
	desc.Entry = m.Entry
	if desc.Entry == "" {
		desc.Entry = "main"
	}
	copy(desc.UniformBlocks[:], m.UniformBlocks)
	return nil
}
