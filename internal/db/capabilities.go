package db

// Module describes one loaded server module as reported by MODULE LIST.
type Module struct {
	Name    string
	Version int
}

// RequiredModule is a module name with the minimum version the client needs.
type RequiredModule struct {
	Name       string
	MinVersion int
}

// RequiredSearchModules lists the module builds that provide FT.* vector search.
// Any one of them satisfies the requirement.
var RequiredSearchModules = []RequiredModule{
	{Name: "search", MinVersion: 20400},
	{Name: "searchlight", MinVersion: 20400},
}

// vectorRangeMinVersion is the first RediSearch release with VECTOR_RANGE.
const vectorRangeMinVersion = 20600

// Capabilities is the server capability descriptor captured once at connection setup.
type Capabilities struct {
	Modules       []Module
	SearchModule  string
	SearchVersion int
}

// NewCapabilities resolves the search module from a MODULE LIST snapshot.
func NewCapabilities(modules []Module) Capabilities {
	c := Capabilities{Modules: modules}
	for _, req := range RequiredSearchModules {
		for _, m := range modules {
			if m.Name == req.Name && m.Version >= req.MinVersion {
				c.SearchModule = m.Name
				c.SearchVersion = m.Version
				return c
			}
		}
	}
	return c
}

// HasSearch reports whether a supported search module is loaded.
func (c Capabilities) HasSearch() bool { return c.SearchModule != "" }

// SupportsVectorRange reports whether VECTOR_RANGE queries are available.
func (c Capabilities) SupportsVectorRange() bool {
	return c.HasSearch() && c.SearchVersion >= vectorRangeMinVersion
}
