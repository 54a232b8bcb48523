package heritage

// NewExtension creates a self-attaching factory. Constructing it with a
// leading *Object composes the new instance's family onto that object; a
// *Config may follow the host. The remaining arguments go to init, which
// runs before the composition.
//
//	professional := heritage.NewExtension("WorkingProfessional", nil, nil).
//		Define("salary", heritage.Property(getSalary, setSalary))
//	professional.Construct(student) // student now has salary
func (c *Cloner) NewExtension(name string, parent *Factory, init InitFunc) *Factory {
	return NewFactory(name, parent, func(this *Object, args ...any) error {
		host, cfg, rest := extensionArgs(args)
		if init != nil {
			if err := init(this, rest...); err != nil {
				return err
			}
		}
		if host != nil && host != this {
			c.ExtendFromInstance(host, this, cfg)
		}
		return nil
	})
}

// NewExtension creates a self-attaching factory using the default Cloner.
func NewExtension(name string, parent *Factory, init InitFunc) *Factory {
	return defaultCloner.NewExtension(name, parent, init)
}

func extensionArgs(args []any) (host *Object, cfg *Config, rest []any) {
	if len(args) == 0 {
		return nil, nil, nil
	}
	host, ok := args[0].(*Object)
	if !ok {
		return nil, nil, args
	}
	rest = args[1:]
	if len(rest) > 0 {
		if c, ok := rest[0].(*Config); ok {
			cfg, rest = c, rest[1:]
		}
	}
	return host, cfg, rest
}
