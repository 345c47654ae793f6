package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJavaNames(t *testing.T) {
	t.Parallel()

	j := JavaNames{}

	t.Run("packages", func(t *testing.T) {
		assert.Equal(t, "default", j.PackageName(""))
		assert.Equal(t, "com.example.util", j.PackageName("com/example/util"))
	})

	t.Run("classes", func(t *testing.T) {
		assert.Equal(t, "Outer.Inner", j.ClassName("com/example/Outer$Inner", "", "java/lang/Object", nil))
		assert.Equal(t, "Outer.new Runnable() {...}",
			j.ClassName("com/example/Outer$1", "", "java/lang/Object", []string{"java/lang/Runnable"}))
		assert.Equal(t, "Outer.new Object() {...}", j.ClassName("com/example/Outer$2", "", "", nil))
		assert.Equal(t, "com.example.Outer.Inner", j.QualifiedClassName("com/example/Outer$Inner"))
	})

	t.Run("methods", func(t *testing.T) {
		assert.Equal(t, "static {...}", j.MethodName("p/A", "<clinit>", "()V", ""))
		assert.Equal(t, "A(int, String[])", j.MethodName("p/A", "<init>", "(I[Ljava/lang/String;)V", ""))
		assert.Equal(t, "{...}", j.MethodName("p/A$1", "<init>", "()V", ""))
		assert.Equal(t, "run(long, Map.Entry, double[][])",
			j.MethodName("p/A", "run", "(JLjava/util/Map$Entry;[[D)Z", ""))
		assert.Equal(t, "run()", j.MethodName("p/A", "run", "()V", ""))
	})
}

func TestGoNames(t *testing.T) {
	t.Parallel()

	g := GoNames{}
	assert.Equal(t, "example.com/mod/pkg", g.PackageName("example.com/mod/pkg"))
	assert.Equal(t, ".", g.PackageName(""))
	assert.Equal(t, "server", g.ClassName("example.com/mod/pkg/server", "", "", nil))
	assert.Equal(t, "(*Server).Start", g.MethodName("example.com/mod/pkg/server", "(*Server).Start", "", ""))
}

func TestForLanguage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, GoNames{}, ForLanguage("go"))
	assert.Equal(t, JavaNames{}, ForLanguage("java"))
	assert.Nil(t, ForLanguage("cobol"))
}
