package names

import "strings"

// JavaNames shows JVM internal names in Java source notation.
type JavaNames struct{}

// PackageName converts "com/example" to "com.example". The unnamed package
// is shown as "default".
func (JavaNames) PackageName(vmname string) string {
	if vmname == "" {
		return "default"
	}
	return strings.ReplaceAll(vmname, "/", ".")
}

func (j JavaNames) ClassName(vmname, _, superName string, interfaces []string) string {
	if isAnonymous(vmname) {
		super := superName
		if len(interfaces) == 1 {
			super = interfaces[0]
		}
		if super == "" {
			super = "java/lang/Object"
		}
		enclosing := vmname[:strings.LastIndexByte(vmname, '$')]
		return j.simpleName(enclosing) + ".new " + j.simpleName(super) + "() {...}"
	}
	return j.simpleName(vmname)
}

func (JavaNames) QualifiedClassName(vmname string) string {
	return strings.NewReplacer("/", ".", "$", ".").Replace(vmname)
}

// MethodName renders constructors with the class name, static initializers
// as "static {...}" and appends the parameter types of the descriptor.
func (j JavaNames) MethodName(className, methodName, desc, _ string) string {
	if methodName == "<clinit>" {
		return "static {...}"
	}
	var sb strings.Builder
	if methodName == "<init>" {
		if isAnonymous(className) {
			return "{...}"
		}
		sb.WriteString(j.simpleName(className))
	} else {
		sb.WriteString(methodName)
	}
	sb.WriteByte('(')
	for i, p := range parameterTypes(desc) {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p)
	}
	sb.WriteByte(')')
	return sb.String()
}

func (JavaNames) simpleName(vmname string) string {
	if i := strings.LastIndexByte(vmname, '/'); i >= 0 {
		vmname = vmname[i+1:]
	}
	return strings.ReplaceAll(vmname, "$", ".")
}

// isAnonymous reports whether the innermost class name is numeric, as for
// "Foo$1".
func isAnonymous(vmname string) bool {
	i := strings.LastIndexByte(vmname, '$')
	if i < 0 || i == len(vmname)-1 {
		return false
	}
	for _, r := range vmname[i+1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var primitives = map[byte]string{
	'Z': "boolean",
	'B': "byte",
	'C': "char",
	'S': "short",
	'I': "int",
	'J': "long",
	'F': "float",
	'D': "double",
	'V': "void",
}

// parameterTypes decodes the parameter list of a method descriptor such as
// "(I[Ljava/lang/String;)V" into short type names.
func parameterTypes(desc string) []string {
	if !strings.HasPrefix(desc, "(") {
		return nil
	}
	var types []string
	i := 1
	for i < len(desc) && desc[i] != ')' {
		dims := 0
		for i < len(desc) && desc[i] == '[' {
			dims++
			i++
		}
		if i >= len(desc) {
			break
		}
		var name string
		if desc[i] == 'L' {
			end := strings.IndexByte(desc[i:], ';')
			if end < 0 {
				break
			}
			name = JavaNames{}.simpleName(desc[i+1 : i+end])
			i += end + 1
		} else {
			name = primitives[desc[i]]
			i++
		}
		types = append(types, name+strings.Repeat("[]", dims))
	}
	return types
}
