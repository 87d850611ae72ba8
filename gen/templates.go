// Copyright 2023 The PETSc Developers
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gen

import (
	"strings"
	"text/template"

	"github.com/kballard/go-shellquote"
)

var templFuncs = template.FuncMap{
	"quote": func(s string) string {
		if s == "" {
			return "''"
		}
		return shellquote.Join(s)
	},
	"join": strings.Join,
}

var (
	headerTmpl = template.Must(template.New("header").Funcs(templFuncs).Parse(`#! /usr/bin/env bash
# Generated from {{.Source}}, do not edit.
{{- range .Comments}}
# {{.}}
{{- end}}

exec={{quote .Exec}}
testname={{quote .TestName}}
label={{quote .Label}}
runfiles={{quote .RunFiles}}
wPETSC_DIR={{quote .WPetscDir}}
petsc_dir={{quote .PetscDir}}
petsc_arch={{quote .PetscArch}}
srcdir={{quote .SrcDir}}
testroot={{quote .TestRoot}}
DATAFILESPATH=${DATAFILESPATH:-{{quote .DataFilesPath}}}
index_size={{quote .IndexSize}}
scalar_size={{quote .ScalarSize}}
mpiexec={{quote .MPIExec}}
diff_exe={{quote .Diff}}

. "${petsc_dir}/config/petsc_harness.sh"
`))

	footerTmpl = template.Must(template.New("footer").Funcs(templFuncs).Parse(
		`petsc_testend {{quote .}}`))

	// reported replaces the run by a TAP line for TODO and SKIP.
	reportedTmpl = template.Must(template.New("reported").Funcs(templFuncs).Parse(
		`printf "ok ${label} # {{.Directive}} {{join .Reasons ", "}}\n"
total=1; {{.Counter}}=1
petsc_testend {{quote .TestRoot}}
exit`))

	deferredHead = `if test -z "${DATAFILESPATH}"; then`
	deferredFoot = `fi`

	loopHeadTmpl = template.Must(template.New("loophead").Funcs(templFuncs).Parse(
		`for {{.Var}} in {{join .Values " "}}; do`))
	loopFoot = `done`

	mpiTmpl = template.Must(template.New("mpitest").Funcs(templFuncs).Parse(
		`petsc_testrun "${mpiexec} -n {{.Nsize}} ${exec} {{.Args}}" {{.RedirectFile}} ${testname}.err "${label}{{.LabelSuffix}}"{{if .Filter}} {{quote .Filter}}{{end}}`))

	commandTmpl = template.Must(template.New("commandtest").Funcs(templFuncs).Parse(
		`petsc_testrun "{{.Command}}" {{.RedirectFile}} ${testname}.err "cmd-${label}{{.LabelSuffix}}"{{if .Filter}} {{quote .Filter}}{{end}}`))

	// diffTmpl tries every candidate output file in turn.
	diffTmpl = template.Must(template.New("difftest").Funcs(templFuncs).Parse(
		`petsc_testrun "{{range $i, $f := .OutputFiles}}{{if $i}} || {{end}}${diff_exe} {{$f}} {{$.RedirectFile}}{{if gt (len $.OutputFiles) 1}} > diff-${testname}-{{$i}}.out 2> diff-${testname}-{{$i}}.out{{end}}{{end}}" diff-${testname}.out diff-${testname}.out "diff-${label}{{.LabelSuffix}}" ""`))

	filterDiffTmpl = template.Must(template.New("filterdifftest").Funcs(templFuncs).Parse(
		`petsc_testrun "{{.FilterOutput}} {{index .OutputFiles 0}} | ${diff_exe} - {{.RedirectFile}}" diff-${testname}.out diff-${testname}.out "diff-${label}{{.LabelSuffix}}" ""`))
)
