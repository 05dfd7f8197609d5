package cli

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
)

// completionFlag is one flag as seen by the completion templates.
type completionFlag struct {
	Name  string
	Usage string
	// Arg is the value placeholder ("int", "string", ...), empty for booleans.
	Arg string
}

type completionData struct {
	Program    string
	Flags      []completionFlag
	Algorithms string
}

// valueHints lists suggested values for flags whose domain is small.
var valueHints = map[string]string{
	"leaf":          "4 8 16 32 64 128",
	"n":             "64 128 256 512 1024 2048",
	"bench-first":   "4 8 16 32",
	"bench-last":    "256 512 1024 2048 4096",
	"bench-repeats": "1 2 3 5",
	"timeout":       "30s 1m 5m 10m 30m",
	"completion":    "bash zsh fish",
}

var fileFlags = map[string]bool{
	"o": true, "output": true, "csv": true, "env-file": true, "calibration-profile": true,
}

// GenerateCompletion writes a completion script for shell ("bash", "zsh" or
// "fish") covering every flag of fs and offering algorithms for -algo.
func GenerateCompletion(out io.Writer, shell string, fs *flag.FlagSet, algorithms []string) error {
	tmpl, ok := completionTemplates[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}

	data := completionData{
		Program:    fs.Name(),
		Algorithms: strings.Join(append(append([]string(nil), algorithms...), "all"), " "),
	}
	fs.VisitAll(func(f *flag.Flag) {
		arg, usage := flag.UnquoteUsage(f)
		data.Flags = append(data.Flags, completionFlag{Name: f.Name, Usage: usage, Arg: arg})
	})
	sort.Slice(data.Flags, func(i, j int) bool { return data.Flags[i].Name < data.Flags[j].Name })

	return tmpl.Execute(out, data)
}

var completionFuncs = template.FuncMap{
	"hint":   func(name string) string { return valueHints[name] },
	"isFile": func(name string) bool { return fileFlags[name] },
	"zshq":   strings.NewReplacer(`'`, `'\''`, `[`, `\[`, `]`, `\]`, `:`, `\:`).Replace,
	"fishq":  strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace,
}

var completionTemplates = map[string]*template.Template{
	"bash": template.Must(template.New("bash").Funcs(completionFuncs).Parse(`# Bash completion script for {{.Program}}
# Add this to your ~/.bashrc or ~/.bash_completion

_{{.Program}}_completions() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
        -algo)
            COMPREPLY=( $(compgen -W "{{.Algorithms}}" -- "${cur}") )
            return 0
            ;;
{{- range .Flags}}{{if isFile .Name}}
        -{{.Name}})
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
{{- else if hint .Name}}
        -{{.Name}})
            COMPREPLY=( $(compgen -W "{{hint .Name}}" -- "${cur}") )
            return 0
            ;;
{{- end}}{{end}}
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "{{range $i, $f := .Flags}}{{if $i}} {{end}}-{{$f.Name}}{{end}}" -- "${cur}") )
    fi
}

complete -F _{{.Program}}_completions {{.Program}}
`)),
	"zsh": template.Must(template.New("zsh").Funcs(completionFuncs).Parse(`#compdef {{.Program}}

# Zsh completion script for {{.Program}}
# Place this file in a directory of your $fpath

_{{.Program}}() {
    _arguments -s \
        '-algo[Multiplier to use]:algorithm:({{.Algorithms}})' \
{{- range .Flags}}{{if ne .Name "algo"}}
        '-{{.Name}}[{{zshq .Usage}}]{{if isFile .Name}}:file:_files{{else if hint .Name}}:value:({{hint .Name}}){{else if .Arg}}:{{.Arg}}:{{end}}' \
{{- end}}{{end}}
        && return 0
}

_{{.Program}} "$@"
`)),
	"fish": template.Must(template.New("fish").Funcs(completionFuncs).Parse(`# Fish completion script for {{.Program}}
# Save as ~/.config/fish/completions/{{.Program}}.fish

complete -c {{.Program}} -f
complete -c {{.Program}} -o algo -x -a '{{.Algorithms}}' -d 'Multiplier to use'
{{- range .Flags}}{{if ne .Name "algo"}}
complete -c {{$.Program}} -o {{.Name}}{{if isFile .Name}} -r -F{{else if hint .Name}} -x -a '{{hint .Name}}'{{else if .Arg}} -x{{end}} -d '{{fishq .Usage}}'
{{- end}}{{end}}
`)),
}
