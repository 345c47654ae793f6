// Package names turns the internal names stored in coverage trees into
// labels shown in reports.
package names

// LanguageNames converts internal element names into display names.
type LanguageNames interface {
	PackageName(vmname string) string
	ClassName(vmname, signature, superName string, interfaces []string) string
	QualifiedClassName(vmname string) string
	MethodName(className, methodName, desc, signature string) string
}

// ForLanguage returns the names for "go" or "java", and nil for anything
// else.
func ForLanguage(lang string) LanguageNames {
	switch lang {
	case "go", "":
		return GoNames{}
	case "java":
		return JavaNames{}
	}
	return nil
}
