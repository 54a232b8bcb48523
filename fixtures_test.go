package heritage

import (
	"fmt"
	"strings"
)

// family is a small class hierarchy used across the engine tests:
//
//	Mammal <- Human <- Student
//	          Human <- Scientist <- Informatician
//	WorkingProfessional (self-attaching extension)
type family struct {
	Mammal        *Factory
	Human         *Factory
	Student       *Factory
	Scientist     *Factory
	Informatician *Factory
	Professional  *Factory
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// backed is a getter/setter pair over the data member _name.
func backed(name string) *Descriptor {
	field := "_" + name
	return Property(
		func(this *Object) any { return this.Get(field) },
		func(this *Object, v any) { _ = this.Set(field, v) },
	)
}

func readOnly(name string) *Descriptor {
	field := "_" + name
	return Property(func(this *Object) any { return this.Get(field) }, nil)
}

// named is a method answering "<owner>.<name>".
func named(owner, name string) *Descriptor {
	return Func(name, func(*Object, ...any) (any, error) {
		return owner + "." + name, nil
	})
}

func newFamily(c *Cloner) *family {
	f := &family{}
	f.Mammal = NewFactory("Mammal", nil, func(this *Object, args ...any) error {
		return this.Define("_weight", DataDescriptor(arg(args, 0), true, true, false))
	}).
		Define("weight", readOnly("weight")).
		Define("eat", named("Mammal", "eat"))

	f.Human = NewFactory("Human", f.Mammal, func(this *Object, args ...any) error {
		if _, err := f.Mammal.Invoke(this, arg(args, 2)); err != nil {
			return err
		}
		return this.Set("_name", arg(args, 0))
	}).
		Define("name", readOnly("name")).
		Define("breathe", named("Human", "breathe"))

	f.Student = NewFactory("Student", f.Human, func(this *Object, args ...any) error {
		if _, err := f.Human.Invoke(this, arg(args, 0), arg(args, 1)); err != nil {
			return err
		}
		return this.Set("_credits", 0)
	}).
		Define("credits", readOnly("credits")).
		Define("addCredits", Func("addCredits", func(this *Object, args ...any) (any, error) {
			cur, _ := this.Get("_credits").(int)
			n, _ := arg(args, 0).(int)
			return nil, this.Set("_credits", cur+n)
		}))

	f.Scientist = NewFactory("Scientist", f.Human, func(this *Object, args ...any) error {
		_, err := f.Human.Invoke(this, args...)
		return err
	}).
		Define("skillSet", readOnly("skillSet")).
		Define("education", readOnly("education")).
		Define("contact", named("Scientist", "contact"))

	f.Informatician = NewFactory("Informatician", f.Scientist, func(this *Object, args ...any) error {
		_, err := f.Scientist.Invoke(this, args...)
		return err
	}).
		Define("experience", readOnly("experience")).
		Define("readCode", named("Informatician", "readCode")).
		Define("writeCode", named("Informatician", "writeCode")).
		Define("work", Func("work", func(this *Object, args ...any) (any, error) {
			return fmt.Sprintf("%v works on %v for %vh", this.Get("_name"), arg(args, 0), arg(args, 1)), nil
		}))

	f.Professional = c.NewExtension("WorkingProfessional", nil, func(this *Object, _ ...any) error {
		return this.Set("_salary", nil)
	}).
		Define("salary", backed("salary")).
		Define("startVacation", named("WorkingProfessional", "startVacation"))
	return f
}

// recordingTracer collects trace messages.
type recordingTracer struct {
	msgs []string
	errs []error
}

func (r *recordingTracer) Trace(msg string, err error) {
	r.msgs = append(r.msgs, msg)
	r.errs = append(r.errs, err)
}

func (r *recordingTracer) contains(part string) bool {
	for _, m := range r.msgs {
		if strings.Contains(m, part) {
			return true
		}
	}
	return false
}

func tempNames(o *Object) []string {
	var out []string
	for _, n := range o.OwnNames() {
		if strings.HasPrefix(n, tempSuperPrefix) {
			out = append(out, n)
		}
	}
	return out
}

func ptrConfig(mut func(*Config)) *Config {
	cfg := DefaultConfig()
	if mut != nil {
		mut(&cfg)
	}
	return &cfg
}
