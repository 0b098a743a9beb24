// Package stage is the update core of a retained-mode scene graph.
//
// A [Scene] owns a tree of [Node] values. Every node has a position,
// orientation, scale, size, color and visibility, set directly or inherited
// from its parent. Once per tick the scene composes world matrices and
// world colors, plans stencil and scissor clipping, orders drawables into
// per-layer render lists and computes the damage rectangles a presenter has
// to redraw. The result is published as an immutable [Frame].
//
// # Two sides
//
// Node methods form the event side. They run on one goroutine (the
// producer), update a cached copy of the node immediately and post a message
// for the update side:
//
//	scene := stage.NewScene(config.Default())
//	panel := stage.NewNode("panel")
//	panel.SetSize(stage.Vec3(300, 200, 0))
//	panel.SetClippingMode(stage.ClipChildren)
//	scene.Root().AddChild(panel)
//
// [Scene.Update] is the update side. It drains the messages, runs
// animations and constraints, resolves the tree, publishes the frame and
// then flips the shared buffer index, so readers of [Node.CurrentPosition]
// and the other Current getters always see one complete tick. [Scene.Commit]
// ends an event batch: it runs tree mutations deferred by signal handlers
// and rebuilds the depth tree. [Scene.Tick] does both for single-goroutine
// use; [RunHeadless] runs producer, update and consumer on separate
// goroutines.
//
// # Properties
//
// Animatable properties are double-buffered ([Property]). A write lands in
// the slot being prepared and becomes the base value; at the start of the
// next tick the slot is reset from the base value so both slots converge.
// Properties can also be accessed by [PropertyIndex] through the [Value]
// tagged union, animated with [Scene.Animate] (tweens from [gween]) and
// driven by [Scene.AddConstraint].
//
// # Ordering, clipping and damage
//
// Sibling order is the index among the parent's children. [Node.Raise],
// [Node.Lower] and friends reorder siblings; [SiblingOrderMultiplier] spaces
// the flattened depths so renderer depth indices order drawables within a
// node. ClipChildren nodes take one stencil bit-plane per nesting level;
// ClipToBoundingBox nodes intersect their screen rectangle with the nearest
// open scissor. Each frame carries [Damage]: tile-aligned rectangles, or a
// full redraw when changes cannot be bounded.
//
// The ebitenview subpackage presents frames with Ebitengine; the config
// subpackage loads scene settings from TOML or YAML.
//
// [gween]: https://github.com/tanema/gween
package stage
