package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeModule struct {
	name     string
	priority int
	err      error
	order    *[]string
}

func (f *fakeModule) Name() string  { return f.name }
func (f *fakeModule) Priority() int { return f.priority }
func (f *fakeModule) Init(ctx *ModuleContext) error {
	*f.order = append(*f.order, f.name)
	return f.err
}

func withRegistry(t *testing.T) {
	saved := moduleRegistry
	moduleRegistry = make(map[string]Module)
	t.Cleanup(func() { moduleRegistry = saved })
}

func TestInitModulesOrder(t *testing.T) {
	withRegistry(t)
	var order []string
	Register(&fakeModule{name: "comment", priority: 20, order: &order})
	Register(&fakeModule{name: "user", priority: 1, order: &order})
	Register(&fakeModule{name: "post", priority: 10, order: &order})
	Register(&fakeModule{name: "common", priority: 100, order: &order})
	Register(&fakeModule{name: "view", priority: 10, order: &order})

	assert.NoError(t, InitModules(&ModuleContext{}))
	assert.Equal(t, []string{"user", "post", "view", "comment", "common"}, order)
}

func TestInitModulesStopsOnError(t *testing.T) {
	withRegistry(t)
	var order []string
	Register(&fakeModule{name: "a", priority: 1, order: &order, err: errors.New("boom")})
	Register(&fakeModule{name: "b", priority: 2, order: &order})

	assert.EqualError(t, InitModules(&ModuleContext{}), "boom")
	assert.Equal(t, []string{"a"}, order)
}
