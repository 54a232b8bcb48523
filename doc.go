// Package heritage emulates multiple inheritance and trait composition on a
// single-inheritance dynamic object model. A host object acquires the members
// and the type identity of any number of independent extension sources at
// run time.
//
// # Object model
//
// An [Object] is a set of named member descriptors plus one ancestor shape.
// A [Factory] pairs an initializer with the shape its instances share, the
// way a constructor function pairs with its prototype. Member reads walk the
// shape chain; [InstanceOf] is the native type test.
//
// # Composition
//
// A [Cloner] composes a source onto a host in three steps:
//
//  1. Register: the source (and everything it was itself composed with)
//     joins the host's extension set, and the host gains the instanceof,
//     super and superFrom members.
//  2. Mirror accessors: getters and setters are copied from the source's
//     shape and each ancestor shape below the Object root.
//  3. Mirror data: methods and plain values are copied the same way.
//
// Members the host already has are kept unless the [Config] asks for an
// override, and only the source's own shape may override. Engine member
// names (constructor, super, superFrom, instanceof, __extends) are never
// copied.
//
//	c := heritage.New(heritage.WithLogger(log))
//	ok := c.Extend(student, professional, nil)
//	c.IsMemberOf(student, professional, true) // true
//	v, found, err := c.Super(student, "work", "TaskA", 5)
//
// # Journal
//
// With [WithJournal], every Extend call is recorded in SQLite together with
// a per-member outcome and the registrations it caused. See [OpenJournal].
package heritage
