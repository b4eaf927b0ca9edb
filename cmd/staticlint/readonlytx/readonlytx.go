package readonlytx

import (
	"go/ast"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports mutating data-access calls made inside the callback passed
// to a ReadOnly transaction scope. Such writes are always rolled back, so a
// call there is almost certainly a bug.
var Analyzer = &analysis.Analyzer{
	Name: "readonlytx",
	Doc:  "reports mutating data-access calls inside ReadOnly transaction callbacks",
	Run:  run,
}

var mutatingMethods = map[string]bool{
	"Create":     true,
	"Save":       true,
	"Update":     true,
	"Updates":    true,
	"UpdateUser": true,
	"Delete":     true,
	"DeleteByID": true,
	"Exec":       true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		// Exclude go-build cache files
		filename := pass.Fset.File(file.Pos()).Name()
		if isGoBuildCacheFile(filename) {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || !isReadOnlyCall(call) {
				return true
			}

			for _, arg := range call.Args {
				if fn, ok := arg.(*ast.FuncLit); ok {
					reportMutations(pass, fn.Body)
				}
			}

			return true
		})
	}
	return nil, nil
}

func isReadOnlyCall(call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	return ok && sel.Sel.Name == "ReadOnly"
}

func reportMutations(pass *analysis.Pass, body *ast.BlockStmt) {
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		// Nested ReadOnly calls are visited by run.
		if isReadOnlyCall(call) {
			return false
		}

		sel, ok := call.Fun.(*ast.SelectorExpr)
		if ok && mutatingMethods[sel.Sel.Name] {
			pass.Reportf(call.Pos(), "%s called inside a ReadOnly transaction is never persisted", sel.Sel.Name)
		}

		return true
	})
}

func isGoBuildCacheFile(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, "/go-build/") || strings.Contains(path, `\go-build\`)
}
