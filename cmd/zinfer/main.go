// Command zinfer drives the type-inference and monomorphization pipeline
// over a small, hand-built demonstration program: two modules composed
// by internal/prefix, checked by internal/pipeline, and monomorphized by
// internal/mono starting from "main.main". There is no lexer or parser
// in this repo yet, so the program checked here is built directly as an
// internal/ast tree rather than read from a source file.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/config"
	"github.com/ziontype/zinfer/internal/infer"
	"github.com/ziontype/zinfer/internal/mono"
	"github.com/ziontype/zinfer/internal/pipeline"
	"github.com/ziontype/zinfer/internal/prefix"
	"github.com/ziontype/zinfer/internal/types"
)

var (
	// Version info, set by ldflags during build.
	Version = "dev"
	Commit  = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		configPath  = flag.String("config", "", "Path to a zinfer.yaml override file")
		watchFlag   = flag.Bool("watch", false, "Re-run whenever -config changes")
		dumpIR      = flag.Bool("dump-ir", false, "Print the monomorphized program's typed IR")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag {
		printHelp()
		return
	}

	if *watchFlag {
		if *configPath == "" {
			fmt.Fprintf(os.Stderr, "%s: -watch requires -config\n", red("Error"))
			os.Exit(1)
		}
		watchConfig(*configPath, *dumpIR)
		return
	}

	if !run(*configPath, *dumpIR) {
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("zinfer %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
}

func printHelp() {
	fmt.Println(bold("zinfer - a Hindley-Milner inference and elaboration pipeline"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  zinfer [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version          Print version information")
	fmt.Println("  --help             Show this help message")
	fmt.Printf("  %s      Load class defaults from a project file\n", cyan("-config <path>"))
	fmt.Printf("  %s            Re-check whenever -config's file changes\n", cyan("-watch"))
	fmt.Printf("  %s         Print the monomorphized program's typed IR\n", cyan("-dump-ir"))
}

// builtinHeadType maps the handful of concrete type names an overrides
// file is allowed to name onto their internal/types representation.
func builtinHeadType(name string) (types.Type, bool) {
	switch name {
	case "Int":
		return types.TyInt, true
	case "Float":
		return types.TyFloat, true
	case "String":
		return types.TyString, true
	case "Bool":
		return types.TyBool, true
	default:
		return nil, false
	}
}

// compilerBuiltins is the handful of compiler-internal operations this
// demo exposes through *ast.Builtin nodes; NO_BUILTINS drops all of
// them, the same way zion's unchecked_var.h escape hatch can be turned
// off, leaving any surface reference to one a plain scope error.
func compilerBuiltins() map[string]*types.Scheme {
	return map[string]*types.Scheme{
		"add": {Type: types.Arrow(types.TyInt, types.Arrow(types.TyInt, types.TyInt))},
	}
}

func sortedSchemeNames(schemes map[string]*types.Scheme) []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolveDefaults(o config.Overrides) map[string]types.Type {
	out := make(map[string]types.Type, len(o.Defaults))
	for className, typeName := range o.Defaults {
		t, ok := builtinHeadType(typeName)
		if !ok {
			fmt.Fprintf(os.Stderr, "%s: unknown override default type %q for class %s\n", yellow("Warning"), typeName, className)
			continue
		}
		out[className] = t
	}
	return out
}

// demoModules builds the two hand-written modules this command checks:
// core declares Option and classify, main composes against core's
// constructor and function by bare (unqualified) reference, exercising
// prefix.Compose's cross-module qualification.
func demoModules() map[string]*ast.Module {
	optionDecl := &ast.TypeDecl{
		ID:     ast.Identifier{Name: "Option"},
		Params: []ast.Identifier{{Name: "a"}},
		Ctors: []ast.CtorDecl{
			{Name: ast.Identifier{Name: "None"}},
			{Name: ast.Identifier{Name: "Some"}, Args: []interface{}{"a"}},
		},
	}

	classify := &ast.Decl{
		Name: ast.Identifier{Name: "classify"},
		Value: &ast.Lambda{
			Param: ast.Identifier{Name: "opt"},
			Body: &ast.Match{
				Scrutinee: &ast.Var{ID: ast.Identifier{Name: "opt"}},
				Arms: []ast.MatchArm{
					{
						Predicate: &ast.CtorPredicate{
							Ctor:  ast.Identifier{Name: "Some"},
							Parts: []ast.Predicate{&ast.Irrefutable{Name: &ast.Identifier{Name: "n"}}},
						},
						Result: &ast.Var{ID: ast.Identifier{Name: "n"}},
					},
					{
						Predicate: &ast.CtorPredicate{Ctor: ast.Identifier{Name: "None"}},
						Result:    &ast.Literal{Kind: ast.IntLit, Value: 0},
					},
				},
			},
		},
	}

	core := &ast.Module{
		Name:      "core",
		TypeDecls: []*ast.TypeDecl{optionDecl},
		Decls:     []*ast.Decl{classify},
	}

	mainMod := &ast.Module{
		Name: "main",
		Decls: []*ast.Decl{
			{
				Name: ast.Identifier{Name: "main"},
				Value: &ast.Application{
					Fn:  &ast.Var{ID: ast.Identifier{Name: "classify"}},
					Arg: &ast.Application{
						Fn:  &ast.Var{ID: ast.Identifier{Name: "Some"}},
						Arg: &ast.Literal{Kind: ast.IntLit, Value: 42},
					},
				},
			},
		},
	}

	return map[string]*ast.Module{"core": core, "main": mainMod}
}

// resolveType turns one of demoModules' opaque type-expression slots
// into a concrete types.Type: a bare string names a type variable (the
// only shape this hand-built demo AST ever needs), while anything
// already a types.Type passes through unchanged.
func resolveType(v interface{}) types.Type {
	switch t := v.(type) {
	case string:
		return &types.TyVar{Name: t}
	case types.Type:
		return t
	default:
		return &types.TyVar{Name: fmt.Sprintf("%v", v)}
	}
}

func run(configPath string, dumpIR bool) bool {
	cfg := config.FromEnv()

	var defaults map[string]types.Type
	if configPath != "" {
		overrides, err := config.LoadOverrides(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return false
		}
		defaults = resolveDefaults(overrides)
	}

	var builtins map[string]*types.Scheme
	if !cfg.NoBuiltins {
		builtins = compilerBuiltins()
	}

	mods := demoModules()
	composed := prefix.Compose(mods, prefix.SortedModuleNames(mods))
	cfg.Debugf(1, "pipeline", "checking module %q (%d decls, %d type decls)", composed.Name, len(composed.Decls), len(composed.TypeDecls))
	result := pipeline.Run(composed, resolveType, defaults, builtins)

	ok := true
	for _, rep := range result.Reports {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", red(rep.Code), rep.Location, rep.Message)
		ok = false
	}
	if !ok {
		return false
	}

	if cfg.ShowTypes {
		for _, name := range sortedSchemeNames(result.Schemes) {
			fmt.Printf("%s %s : %s\n", cyan("::"), name, result.Schemes[name].Type)
		}
	}
	if cfg.ShowEnv {
		// Constructor schemes are registered before any value declaration
		// is checked, so this is genuinely the environment inference
		// starts from, not a post-hoc snapshot.
		names := result.Ctors.Names()
		sort.Strings(names)
		for _, name := range names {
			if scheme, ok := result.Ctors.Scheme(name); ok {
				fmt.Printf("%s %s : %s\n", cyan("env"), name, scheme.Type)
			}
		}
	}

	entryScheme, found := result.Schemes["main.main"]
	if !found {
		fmt.Fprintf(os.Stderr, "%s: no entry point main.main found after checking\n", red("Error"))
		return false
	}
	entryType, _ := entryScheme.Instantiate(result.Fresh.Next)
	entry := mono.DefnID{Name: "main.main", Type: entryType}

	gen := infer.NewGenerator(result.Ctors, result.Fresh, resolveType)
	translator := mono.NewTranslator(result.Decls, result.Schemes, gen, result.BaseEnv)
	prog, err := translator.Translate(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return false
	}

	fmt.Printf("%s main.main : %s\n", green("checked"), entryType)
	if dumpIR {
		for _, key := range mono.SortedDefnKeys(prog) {
			fmt.Printf("%s\n", prog.Defns[key])
		}
	}
	return true
}

// watchConfig re-runs the checker every time configPath changes on
// disk, so a project's zinfer.yaml overrides can be iterated on without
// restarting the process.
func watchConfig(configPath string, dumpIR bool) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: watching %s: %v\n", red("Error"), configPath, err)
		os.Exit(1)
	}

	fmt.Printf("%s watching %s for changes...\n", cyan("→"), configPath)
	run(configPath, dumpIR)

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				debounce.Reset(100 * time.Millisecond)
			}
		case <-debounce.C:
			run(configPath, dumpIR)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		}
	}
}
