package domain

// Target is one scriptable object in a project: the backdrop stage or a
// single sprite. Only the attributes the controller needs survive parsing;
// scripts and media are opaque to this module.
type Target struct {
	Name      string
	IsStage   bool
	Variables map[string]any
}

// Project is the parsed, format-independent project model produced by a
// loader. The bytecode itself is not represented here; the stage runtime
// receives the raw payload alongside this model.
type Project struct {
	Title   string
	Notes   string
	Targets []Target
}

// DeclaredVariables merges the variable maps of every target. Later targets
// do not shadow earlier ones; first declaration wins.
func (p *Project) DeclaredVariables() map[string]any {
	vars := make(map[string]any)
	for _, t := range p.Targets {
		for name, value := range t.Variables {
			if _, ok := vars[name]; !ok {
				vars[name] = value
			}
		}
	}
	return vars
}

// CloudVariables lists the declared variable names carrying the cloud marker.
func (p *Project) CloudVariables() []string {
	var names []string
	for name := range p.DeclaredVariables() {
		if IsCloudName(name) {
			names = append(names, name)
		}
	}
	return names
}
