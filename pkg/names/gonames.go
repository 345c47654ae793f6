package names

import "strings"

// GoNames shows import paths and function names as written in Go source.
type GoNames struct{}

func (GoNames) PackageName(vmname string) string {
	if vmname == "" {
		return "."
	}
	return vmname
}

// ClassName returns the last path element: the file unit within its
// package.
func (GoNames) ClassName(vmname, _, _ string, _ []string) string {
	if i := strings.LastIndexByte(vmname, '/'); i >= 0 {
		return vmname[i+1:]
	}
	return vmname
}

func (GoNames) QualifiedClassName(vmname string) string {
	return vmname
}

// MethodName returns the function name, including a receiver such as
// "(*Server).Start".
func (GoNames) MethodName(_, methodName, _, _ string) string {
	return methodName
}
