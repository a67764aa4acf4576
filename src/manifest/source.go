package manifest

// Source identifies where a dependency's versions are authoritative.
// It is a closed sum: Registry, Path, or Git. Consumers switch
// exhaustively on the concrete type.
type Source interface {
	isSource()
}

// Registry is a registry-sourced dependency. An empty Name means the
// default registry.
type Registry struct {
	Name string
}

// Path is a local filesystem dependency, relative to the declaring
// manifest's directory unless absolute.
type Path struct {
	Path string
}

// Git is a remote repository dependency with at most one of
// Branch/Tag/Rev set.
type Git struct {
	URL    string
	Branch string
	Tag    string
	Rev    string
}

func (Registry) isSource() {}
func (Path) isSource()     {}
func (Git) isSource()      {}
