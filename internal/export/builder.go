package export

import "bytes"

// File names of the rendered configuration.
const (
	FileMain      = "main.tf"
	FileVersions  = "versions.tf"
	FileVariables = "variables.tf"
	FileOutputs   = "outputs.tf"
	FileTfvars    = "terraform.tfvars"
)

// Builder assembles the Terraform files of one export. Resource blocks are concatenated
// into main.tf in the order they are added.
type Builder struct {
	main       bytes.Buffer
	files      map[string][]byte
	emitTfvars bool
}

// NewBuilder returns an empty builder. terraform.tfvars is dropped unless emitTfvars is set.
func NewBuilder(emitTfvars bool) *Builder {
	return &Builder{files: make(map[string][]byte), emitTfvars: emitTfvars}
}

// AddResource appends a rendered resource block to main.tf.
func (b *Builder) AddResource(block []byte) {
	if len(block) == 0 {
		return
	}
	if b.main.Len() > 0 {
		b.main.WriteByte('\n')
	}
	b.main.Write(block)
}

// Set stores the content of a whole file. Empty content removes it.
func (b *Builder) Set(name string, content []byte) {
	if len(content) == 0 {
		delete(b.files, name)
		return
	}
	b.files[name] = content
}

// Build returns filename -> content for every non-empty file.
func (b *Builder) Build() map[string][]byte {
	out := make(map[string][]byte, len(b.files)+1)
	for name, content := range b.files {
		if name == FileTfvars && !b.emitTfvars {
			continue
		}
		out[name] = content
	}
	if b.main.Len() > 0 {
		out[FileMain] = append([]byte(nil), b.main.Bytes()...)
	}
	return out
}
