// Package main содержит multichecker для статического анализа кода dealhub.
//
// Набор анализаторов:
//
//  1. Стандартные анализаторы golang.org/x/tools/go/analysis/passes,
//     включая lostcancel и httpresponse для кода с context и HTTP-клиентами.
//  2. Все анализаторы класса SA из staticcheck.io.
//  3. Выборочные проверки ST и S из staticcheck.io (см. extraChecks).
//  4. errcheck: необработанные ошибки.
//  5. noexit: os.Exit и log.Fatal в main.main.
//
// Использование:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/kisielk/errcheck/errcheck"

	"github.com/tempizhere/dealhub/cmd/staticlint/noexit"
)

// extraChecks перечисляет проверки ST и S, включаемые поимённо
var extraChecks = map[string]bool{
	"ST1000": true, // комментарий пакета
	"ST1005": true, // текст ошибок со строчной буквы
	"ST1019": true, // повторный импорт пакета
	"S1000":  true, // select с одним case
	"S1002":  true, // сравнение с булевой константой
	"S1021":  true, // слияние объявления и присваивания
}

func selected(analyzers []*lint.Analyzer) []*analysis.Analyzer {
	var out []*analysis.Analyzer
	for _, a := range analyzers {
		if extraChecks[a.Analyzer.Name] {
			out = append(out, a.Analyzer)
		}
	}
	return out
}

func main() {
	analyzers := []*analysis.Analyzer{
		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		nilness.Analyzer,
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		unreachable.Analyzer,
		unusedresult.Analyzer,
	}

	for _, a := range staticcheck.Analyzers {
		analyzers = append(analyzers, a.Analyzer)
	}
	analyzers = append(analyzers, selected(stylecheck.Analyzers)...)
	analyzers = append(analyzers, selected(simple.Analyzers)...)

	analyzers = append(analyzers,
		errcheck.Analyzer,
		noexit.NoExitAnalyzer,
	)

	multichecker.Main(analyzers...)
}
