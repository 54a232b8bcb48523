package runtime

import (
	"context"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/risor-io/risor/object"
	"github.com/rs/zerolog"

	"github.com/jward/heritage"
	"github.com/jward/heritage/internal/declare"
)

// handle is the script-side view of an engine value. Scripts can read its
// name and kind; everything else goes through host functions.
type handle struct {
	obj *heritage.Object
	fac *heritage.Factory
	fn  heritage.Callable
}

func (h *handle) Name() string {
	switch {
	case h.obj != nil:
		return h.obj.SourceName()
	case h.fac != nil:
		return h.fac.Name
	default:
		return fmt.Sprint(h.fn)
	}
}

func (h *handle) Kind() string {
	switch {
	case h.obj != nil && h.obj.HasOwn("constructor"):
		return "shape"
	case h.obj != nil:
		return "object"
	case h.fac != nil:
		return "factory"
	default:
		return "function"
	}
}

func (h *handle) String() string {
	return h.Kind() + " " + h.Name()
}

func (h *handle) value() any {
	switch {
	case h.obj != nil:
		return h.obj
	case h.fac != nil:
		return h.fac
	default:
		return h.fn
	}
}

func wrap(v any) object.Object {
	var h *handle
	switch x := v.(type) {
	case *heritage.Object:
		if x == nil {
			return object.Nil
		}
		h = &handle{obj: x}
	case *heritage.Factory:
		if x == nil {
			return object.Nil
		}
		h = &handle{fac: x}
	case heritage.Callable:
		h = &handle{fn: x}
	}
	p, err := object.NewProxy(h)
	if err != nil {
		return object.Errorf("runtime: proxy error: %v", err)
	}
	return p
}

// toRisor converts an engine value into a script value.
func toRisor(v any) object.Object {
	switch x := v.(type) {
	case nil:
		return object.Nil
	case object.Object:
		return x
	case string:
		return object.NewString(x)
	case int:
		return object.NewInt(int64(x))
	case int64:
		return object.NewInt(x)
	case float64:
		return object.NewFloat(x)
	case bool:
		return object.NewBool(x)
	case []string:
		items := make([]object.Object, len(x))
		for i, s := range x {
			items[i] = object.NewString(s)
		}
		return object.NewList(items)
	case []any:
		items := make([]object.Object, len(x))
		for i, item := range x {
			items[i] = toRisor(item)
		}
		return object.NewList(items)
	case map[string]any:
		m := make(map[string]object.Object, len(x))
		for k, item := range x {
			m[k] = toRisor(item)
		}
		return object.NewMap(m)
	case *heritage.Object, *heritage.Factory, heritage.Callable:
		return wrap(x)
	default:
		return object.NewString(fmt.Sprint(x))
	}
}

// toGo converts a script value into an engine value. Handles unwrap to the
// engine value they stand for; integers become int.
func toGo(obj object.Object) any {
	switch v := obj.(type) {
	case nil, *object.NilType:
		return nil
	case *object.String:
		return v.Value()
	case *object.Int:
		return int(v.Value())
	case *object.Float:
		return v.Value()
	case *object.Bool:
		return v.Value()
	case *object.List:
		items := make([]any, 0, len(v.Value()))
		for _, item := range v.Value() {
			items = append(items, toGo(item))
		}
		return items
	case *object.Map:
		m := make(map[string]any, len(v.Value()))
		for k, item := range v.Value() {
			m[k] = toGo(item)
		}
		return m
	case *object.Proxy:
		if h, ok := v.Interface().(*handle); ok {
			return h.value()
		}
		return v.Interface()
	default:
		return obj
	}
}

func toGoArgs(args []object.Object) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = toGo(a)
	}
	return out
}

// objectArg accepts an object or shape handle. A factory stands for its
// shape.
func objectArg(fn string, arg object.Object) (*heritage.Object, object.Object) {
	switch v := toGo(arg).(type) {
	case *heritage.Object:
		return v, nil
	case *heritage.Factory:
		return v.Shape(), nil
	default:
		return nil, object.Errorf("%s: expected object, got %s", fn, arg.Type())
	}
}

func factoryArg(fn string, arg object.Object) (*heritage.Factory, object.Object) {
	f, ok := toGo(arg).(*heritage.Factory)
	if !ok {
		return nil, object.Errorf("%s: expected factory, got %s", fn, arg.Type())
	}
	return f, nil
}

func sourceArg(fn string, arg object.Object) (heritage.Source, object.Object) {
	switch v := toGo(arg).(type) {
	case *heritage.Object:
		return v, nil
	case *heritage.Factory:
		return v, nil
	default:
		return nil, object.Errorf("%s: expected shape or factory, got %s", fn, arg.Type())
	}
}

func stringArg(fn string, arg object.Object) (string, object.Object) {
	s, err := toString(arg)
	if err != nil {
		return "", object.Errorf("%s: %v", fn, err)
	}
	return s, nil
}

// configKeys are the keys a script may set in a composition config map.
var configKeys = map[string]bool{
	"register":                     true,
	"mirror_getters_and_setters":   true,
	"override_getters_and_setters": true,
	"mirror_functions":             true,
	"override_functions":           true,
	"mirror_others":                true,
	"override_others":              true,
}

// configArg decodes a config map on top of the defaults. nil selects the
// defaults outright.
func configArg(fn string, arg object.Object) (*heritage.Config, object.Object) {
	if arg == nil || arg == object.Nil {
		return nil, nil
	}
	m, err := extractMap(arg)
	if err != nil {
		return nil, object.Errorf("%s: config: %v", fn, err)
	}
	raw := make(map[string]any, len(m))
	for k, v := range m {
		if !configKeys[k] {
			return nil, object.Errorf("%s: config: unknown key %q", fn, k)
		}
		b, ok := v.(*object.Bool)
		if !ok {
			return nil, object.Errorf("%s: config: %s must be a bool", fn, k)
		}
		raw[k] = b.Value()
	}
	data, err := toml.Marshal(raw)
	if err != nil {
		return nil, object.Errorf("%s: config: %v", fn, err)
	}
	cfg, err := heritage.ParseConfig(data)
	if err != nil {
		return nil, object.Errorf("%s: %v", fn, err)
	}
	return &cfg, nil
}

func argsRangeError(fn string, lo, hi, given int) object.Object {
	return object.Errorf("%s: expected %d-%d arguments, got %d", fn, lo, hi, given)
}

// optionalArg returns args[i] or nil.
func optionalArg(args []object.Object, i int) object.Object {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// --- Object model ---

// object([label]) → object
func makeObjectFn() *object.Builtin {
	return object.NewBuiltin("object", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) > 1 {
			return argsRangeError("object", 0, 1, len(args))
		}
		o := heritage.NewObject()
		if len(args) == 1 {
			label, errObj := stringArg("object", args[0])
			if errObj != nil {
				return errObj
			}
			o.Named(label)
		}
		return wrap(o)
	})
}

// shape(name, [parent]) → shape
func makeShapeFn() *object.Builtin {
	return object.NewBuiltin("shape", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return argsRangeError("shape", 1, 2, len(args))
		}
		name, errObj := stringArg("shape", args[0])
		if errObj != nil {
			return errObj
		}
		var parent *heritage.Object
		if p := optionalArg(args, 1); p != nil && p != object.Nil {
			if parent, errObj = objectArg("shape", p); errObj != nil {
				return errObj
			}
		}
		return wrap(heritage.NewShape(name, parent))
	})
}

// factory(name, [parent], [fields]) → factory
//
// Instances run the parent initializer with the constructor arguments and
// then receive a copy of fields.
func makeFactoryFn() *object.Builtin {
	return object.NewBuiltin("factory", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 3 {
			return argsRangeError("factory", 1, 3, len(args))
		}
		name, errObj := stringArg("factory", args[0])
		if errObj != nil {
			return errObj
		}
		if name == "" {
			return object.Errorf("factory: name must not be empty")
		}
		var parent *heritage.Factory
		if p := optionalArg(args, 1); p != nil && p != object.Nil {
			if parent, errObj = factoryArg("factory", p); errObj != nil {
				return errObj
			}
		}
		var fields map[string]any
		if f := optionalArg(args, 2); f != nil && f != object.Nil {
			m, ok := toGo(f).(map[string]any)
			if !ok {
				return object.Errorf("factory: fields must be a map, got %s", f.Type())
			}
			fields = m
		}
		names := make([]string, 0, len(fields))
		for k := range fields {
			names = append(names, k)
		}
		sort.Strings(names)

		init := func(this *heritage.Object, ctorArgs ...any) error {
			if parent != nil {
				if _, err := parent.Invoke(this, ctorArgs...); err != nil {
					return err
				}
			}
			for _, k := range names {
				if err := this.Set(k, fields[k]); err != nil {
					return err
				}
			}
			return nil
		}
		return wrap(heritage.NewFactory(name, parent, init))
	})
}

// new(factory, args...) → instance
func makeNewFn() *object.Builtin {
	return object.NewBuiltin("new", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("new: expected at least 1 argument (factory), got %d", len(args))
		}
		f, errObj := factoryArg("new", args[0])
		if errObj != nil {
			return errObj
		}
		inst, err := f.Construct(toGoArgs(args[1:])...)
		if err != nil {
			return object.Errorf("new: %v", err)
		}
		return wrap(inst)
	})
}

// define_value(target, name, value, [flags]) where flags may set writable,
// configurable and enumerable (all default true).
func makeDefineValueFn() *object.Builtin {
	return object.NewBuiltin("define_value", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 3 || len(args) > 4 {
			return argsRangeError("define_value", 3, 4, len(args))
		}
		target, errObj := objectArg("define_value", args[0])
		if errObj != nil {
			return errObj
		}
		name, errObj := stringArg("define_value", args[1])
		if errObj != nil {
			return errObj
		}
		writable, configurable, enumerable := true, true, true
		if f := optionalArg(args, 3); f != nil && f != object.Nil {
			m, err := extractMap(f)
			if err != nil {
				return object.Errorf("define_value: flags: %v", err)
			}
			writable = getBoolDefault(m, "writable", true)
			configurable = getBoolDefault(m, "configurable", true)
			enumerable = getBoolDefault(m, "enumerable", true)
		}
		d := heritage.DataDescriptor(toGo(args[2]), writable, configurable, enumerable)
		if err := target.Define(name, d); err != nil {
			return object.Errorf("define_value: %v", err)
		}
		return object.Nil
	})
}

// define_accessor(target, name, [readonly]) installs a getter/setter pair
// backed by the data member "_<name>".
func makeDefineAccessorFn() *object.Builtin {
	return object.NewBuiltin("define_accessor", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return argsRangeError("define_accessor", 2, 3, len(args))
		}
		target, errObj := objectArg("define_accessor", args[0])
		if errObj != nil {
			return errObj
		}
		name, errObj := stringArg("define_accessor", args[1])
		if errObj != nil {
			return errObj
		}
		readOnly := false
		if b, ok := optionalArg(args, 2).(*object.Bool); ok {
			readOnly = b.Value()
		}
		field := "_" + name
		get := func(this *heritage.Object) any { return this.Get(field) }
		var set heritage.Setter
		if !readOnly {
			set = func(this *heritage.Object, v any) { _ = this.Set(field, v) }
		}
		if err := target.Define(name, heritage.Property(get, set)); err != nil {
			return object.Errorf("define_accessor: %v", err)
		}
		return object.Nil
	})
}

// define_method(target, name, [result]) installs a method answering result,
// or "<owner>.<name>" when result is omitted.
func makeDefineMethodFn() *object.Builtin {
	return object.NewBuiltin("define_method", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return argsRangeError("define_method", 2, 3, len(args))
		}
		var owner string
		if f, ok := toGo(args[0]).(*heritage.Factory); ok {
			owner = f.Name
		}
		target, errObj := objectArg("define_method", args[0])
		if errObj != nil {
			return errObj
		}
		name, errObj := stringArg("define_method", args[1])
		if errObj != nil {
			return errObj
		}
		if owner == "" {
			owner = target.SourceName()
		}
		var result any = owner + "." + name
		if r := optionalArg(args, 2); r != nil {
			result = toGo(r)
		}
		m := heritage.Func(name, func(*heritage.Object, ...any) (any, error) {
			return result, nil
		})
		if err := target.Define(name, m); err != nil {
			return object.Errorf("define_method: %v", err)
		}
		return object.Nil
	})
}

// get_member(obj, name) → value
func makeGetFn() *object.Builtin {
	return object.NewBuiltin("get_member", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("get_member", 2, len(args))
		}
		o, errObj := objectArg("get_member", args[0])
		if errObj != nil {
			return errObj
		}
		name, errObj := stringArg("get_member", args[1])
		if errObj != nil {
			return errObj
		}
		return toRisor(o.Get(name))
	})
}

// set_member(obj, name, value)
func makeSetFn() *object.Builtin {
	return object.NewBuiltin("set_member", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("set_member", 3, len(args))
		}
		o, errObj := objectArg("set_member", args[0])
		if errObj != nil {
			return errObj
		}
		name, errObj := stringArg("set_member", args[1])
		if errObj != nil {
			return errObj
		}
		if err := o.Set(name, toGo(args[2])); err != nil {
			return object.Errorf("set_member: %v", err)
		}
		return object.Nil
	})
}

// call_method(obj, name, args...) → result
func makeCallFn() *object.Builtin {
	return object.NewBuiltin("call_method", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 {
			return object.Errorf("call_method: expected at least 2 arguments (object, name), got %d", len(args))
		}
		o, errObj := objectArg("call_method", args[0])
		if errObj != nil {
			return errObj
		}
		name, errObj := stringArg("call_method", args[1])
		if errObj != nil {
			return errObj
		}
		v, err := o.Call(name, toGoArgs(args[2:])...)
		if err != nil {
			return object.Errorf("call_method: %v", err)
		}
		return toRisor(v)
	})
}

// members(obj) → {accessors: [...], functions: [...], values: [...]}
func makeMembersFn(c *heritage.Cloner) *object.Builtin {
	return object.NewBuiltin("members", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("members", 1, len(args))
		}
		o, errObj := objectArg("members", args[0])
		if errObj != nil {
			return errObj
		}
		return object.NewMap(map[string]object.Object{
			"accessors": toRisor(c.AccessorNames(o)),
			"functions": toRisor(c.FunctionNames(o)),
			"values":    toRisor(c.ValueNames(o)),
		})
	})
}

// freeze(target) freezes an object, or forbids type-test hooks on a
// factory.
func makeFreezeFn() *object.Builtin {
	return object.NewBuiltin("freeze", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("freeze", 1, len(args))
		}
		switch v := toGo(args[0]).(type) {
		case *heritage.Factory:
			v.Freeze()
		case *heritage.Object:
			v.Freeze()
		default:
			return object.Errorf("freeze: expected object or factory, got %s", args[0].Type())
		}
		return object.Nil
	})
}

func makePreventExtensionsFn() *object.Builtin {
	return object.NewBuiltin("prevent_extensions", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("prevent_extensions", 1, len(args))
		}
		o, errObj := objectArg("prevent_extensions", args[0])
		if errObj != nil {
			return errObj
		}
		o.PreventExtensions()
		return object.Nil
	})
}

// --- Composition ---

// extend(host, source, [config], ctor_args...) → bool
func makeExtendFn(c *heritage.Cloner) *object.Builtin {
	return object.NewBuiltin("extend", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 {
			return object.Errorf("extend: expected at least 2 arguments (host, source), got %d", len(args))
		}
		host, errObj := objectArg("extend", args[0])
		if errObj != nil {
			return errObj
		}
		src, errObj := sourceArg("extend", args[1])
		if errObj != nil {
			return errObj
		}
		cfg, errObj := configArg("extend", optionalArg(args, 2))
		if errObj != nil {
			return errObj
		}
		var ctorArgs []any
		if len(args) > 3 {
			ctorArgs = toGoArgs(args[3:])
		}
		return object.NewBool(c.Extend(host, src, cfg, ctorArgs...))
	})
}

// extend_instance(host, instance, [config], ctor_args...) → bool
func makeExtendInstanceFn(c *heritage.Cloner) *object.Builtin {
	return object.NewBuiltin("extend_instance", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 {
			return object.Errorf("extend_instance: expected at least 2 arguments (host, instance), got %d", len(args))
		}
		host, errObj := objectArg("extend_instance", args[0])
		if errObj != nil {
			return errObj
		}
		inst, errObj := objectArg("extend_instance", args[1])
		if errObj != nil {
			return errObj
		}
		cfg, errObj := configArg("extend_instance", optionalArg(args, 2))
		if errObj != nil {
			return errObj
		}
		var ctorArgs []any
		if len(args) > 3 {
			ctorArgs = toGoArgs(args[3:])
		}
		return object.NewBool(c.ExtendFromInstance(host, inst, cfg, ctorArgs...))
	})
}

// is_member_of(host, candidate, [native]) → bool
func makeIsMemberOfFn(c *heritage.Cloner) *object.Builtin {
	return object.NewBuiltin("is_member_of", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return argsRangeError("is_member_of", 2, 3, len(args))
		}
		host, errObj := objectArg("is_member_of", args[0])
		if errObj != nil {
			return errObj
		}
		candidate, errObj := sourceArg("is_member_of", args[1])
		if errObj != nil {
			return errObj
		}
		native := true
		if b, ok := optionalArg(args, 2).(*object.Bool); ok {
			native = b.Value()
		}
		return object.NewBool(c.IsMemberOf(host, candidate, native))
	})
}

// extensions(obj) → [name, ...]
func makeExtensionsFn() *object.Builtin {
	return object.NewBuiltin("extensions", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("extensions", 1, len(args))
		}
		o, errObj := objectArg("extensions", args[0])
		if errObj != nil {
			return errObj
		}
		exts := heritage.ExtensionsOf(o)
		names := make([]string, len(exts))
		for i, ext := range exts {
			names[i] = ext.SourceName()
		}
		return toRisor(names)
	})
}

// super(host, name, args...) → result, or nil when no extension offers a
// distinct implementation.
func makeSuperFn(c *heritage.Cloner) *object.Builtin {
	return object.NewBuiltin("super", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 {
			return object.Errorf("super: expected at least 2 arguments (host, name), got %d", len(args))
		}
		host, errObj := objectArg("super", args[0])
		if errObj != nil {
			return errObj
		}
		name, errObj := stringArg("super", args[1])
		if errObj != nil {
			return errObj
		}
		v, _, err := c.Super(host, name, toGoArgs(args[2:])...)
		if err != nil {
			return object.Errorf("super: %v", err)
		}
		return toRisor(v)
	})
}

// super_from(host, source, name, args...) → result or nil
func makeSuperFromFn(c *heritage.Cloner) *object.Builtin {
	return object.NewBuiltin("super_from", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 3 {
			return object.Errorf("super_from: expected at least 3 arguments (host, source, name), got %d", len(args))
		}
		host, errObj := objectArg("super_from", args[0])
		if errObj != nil {
			return errObj
		}
		src, errObj := sourceArg("super_from", args[1])
		if errObj != nil {
			return errObj
		}
		name, errObj := stringArg("super_from", args[2])
		if errObj != nil {
			return errObj
		}
		v, _, err := c.SuperFrom(host, src, name, toGoArgs(args[3:])...)
		if err != nil {
			return object.Errorf("super_from: %v", err)
		}
		return toRisor(v)
	})
}

// load_classes(path) or load_classes(source, language) → {name: factory}
func makeLoadClassesFn() *object.Builtin {
	return object.NewBuiltin("load_classes", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return argsRangeError("load_classes", 1, 2, len(args))
		}
		first, errObj := stringArg("load_classes", args[0])
		if errObj != nil {
			return errObj
		}

		var cat *declare.Catalog
		var err error
		if len(args) == 2 {
			lang, errObj := stringArg("load_classes", args[1])
			if errObj != nil {
				return errObj
			}
			cat, err = declare.LoadSource(ctx, []byte(first), lang)
		} else {
			cat, err = declare.Load(ctx, first)
		}
		if err != nil {
			return object.Errorf("load_classes: %v", err)
		}

		m := make(map[string]object.Object)
		for _, name := range cat.Names() {
			f, _ := cat.Factory(name)
			m[name] = wrap(f)
		}
		return object.NewMap(m)
	})
}

// logObject provides log.info/warn/error/debug methods for Risor scripts.
type logObject struct {
	logger zerolog.Logger
}

func (l *logObject) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

func (l *logObject) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error().Msg(msg)
}
