// Package noexit содержит анализатор, запрещающий завершение процесса
// из функции main пакета main в обход отложенных вызовов.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// forbidden перечисляет функции, которые нельзя вызывать напрямую из main
var forbidden = map[string]map[string]bool{
	"os": {"Exit": true},
	"log": {
		"Fatal":   true,
		"Fatalf":  true,
		"Fatalln": true,
	},
}

// NoExitAnalyzer сообщает о прямых вызовах os.Exit и log.Fatal* в main.main.
// Такие вызовы пропускают defer с остановкой серверов и закрытием хранилищ.
var NoExitAnalyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "запрещает прямые вызовы os.Exit и log.Fatal в функции main пакета main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
			return
		}
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			// Замыкания выполняются не в main
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			callee, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
			if !ok || callee.Pkg() == nil {
				return true
			}
			if forbidden[callee.Pkg().Path()][callee.Name()] {
				pass.Reportf(call.Pos(), "прямой вызов %s.%s в функции main запрещен", callee.Pkg().Name(), callee.Name())
			}
			return true
		})
	})

	return nil, nil
}
