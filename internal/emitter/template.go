package emitter

import (
	"strings"
	"text/template"

	"github.com/specialistvlad/modgen/internal/model"
)

const cmakeTemplate = `# Generated by modgen from {{ .Descriptor }}. Do not edit.
cmake_minimum_required(VERSION 3.20)
{{- if .Prepare }}

include("{{ .Prepare }}")
{{- end }}
{{- if .Disabled }}

# {{ .Name }} is disabled; dependents link against an empty interface.
add_library({{ .Target }} INTERFACE)
{{- else }}

file(GLOB_RECURSE {{ .Target }}_SOURCES CONFIGURE_DEPENDS
  "{{ .SourceDir }}/src/*.c"
  "{{ .SourceDir }}/src/*.cc"
  "{{ .SourceDir }}/src/*.cpp")
{{ .Declaration }}
{{- if .Dependencies }}

target_link_libraries({{ .Target }} {{ .Linkage }}{{ range .Dependencies }}
  {{ . }}{{ end }})
{{- end }}
{{- if .References }}

add_dependencies({{ .Target }}{{ range .References }}
  {{ . }}{{ end }})
{{- end }}
{{- range .Fetches }}

# fetch {{ .Name }}: {{ .Repo }}{{ if .Commit }} @ {{ .Commit }}{{ end }}
{{- end }}
{{- end }}
{{- if .Finalize }}

include("{{ .Finalize }}")
{{- end }}
`

var cmakeTmpl = template.Must(template.New("CMakeLists.txt").Parse(cmakeTemplate))

type cmakeData struct {
	Name         string
	Target       string
	Descriptor   string
	SourceDir    string
	Declaration  string
	Linkage      string
	Disabled     bool
	Dependencies []string
	References   []string
	Fetches      []model.Fetch
	Prepare      string
	Finalize     string
}

// CMakeTarget converts a target name into a CMake target identifier.
func CMakeTarget(name string) string {
	return strings.ReplaceAll(name, "/", "_")
}

func cmakeTargets(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = CMakeTarget(n)
	}
	return out
}

// declaration returns the CMake command creating a target of the given type.
func declaration(typ model.ModuleType, target string) (decl, linkage string) {
	sources := "${" + target + "_SOURCES}"
	switch typ {
	case model.TypeExecutable, model.TypeTest:
		return "add_executable(" + target + " " + sources + ")", "PRIVATE"
	case model.TypePlugin:
		return "add_library(" + target + " MODULE " + sources + ")", "PRIVATE"
	case model.TypeData, model.TypeExternal:
		return "add_custom_target(" + target + " SOURCES " + sources + ")", ""
	default:
		return "add_library(" + target + " " + sources + ")", "PUBLIC"
	}
}
