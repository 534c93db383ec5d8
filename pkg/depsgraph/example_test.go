package depsgraph_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/lazydeps/pkg/depsgraph"
)

// application owns the resources and their ready flags.
type application struct {
	pathReady, dataReady, textureReady, viewReady bool
}

func step(msg string) func(*application) error {
	return func(*application) error {
		fmt.Println(msg)
		return nil
	}
}

func ExampleGraph_EnsureExists() {
	b := depsgraph.NewBuilder[*application]()
	path := b.Node("path",
		depsgraph.OnCreate(step("resolve path")),
		depsgraph.OnDestroy(step("forget path")),
		depsgraph.WithReadyFlag(func(a *application) *bool { return &a.pathReady }))
	data := b.Node("data",
		depsgraph.OnCreate(step("load data")),
		depsgraph.OnDestroy(step("free data")),
		depsgraph.WithReadyFlag(func(a *application) *bool { return &a.dataReady }))
	texture := b.Node("texture",
		depsgraph.OnCreate(step("upload texture")),
		depsgraph.OnDestroy(step("release texture")),
		depsgraph.WithReadyFlag(func(a *application) *bool { return &a.textureReady }))
	b.DependsOn(data, path).DependsOn(texture, data)

	g, err := b.Build()
	if err != nil {
		panic(err)
	}

	app := &application{}
	_ = g.EnsureExists(app, texture)
	_ = g.EnsureExists(app, texture) // already there
	fmt.Println("texture ready:", app.textureReady)
	// Output:
	// resolve path
	// load data
	// upload texture
	// texture ready: true
}

func ExampleGraph_Rebuild() {
	b := depsgraph.NewBuilder[*application]()
	path := b.Node("path",
		depsgraph.OnCreate(step("create path")),
		depsgraph.OnDestroy(step("destroy path")),
		depsgraph.WithReadyFlag(func(a *application) *bool { return &a.pathReady }))
	data := b.Node("data",
		depsgraph.OnCreate(step("create data")),
		depsgraph.OnDestroy(step("destroy data")),
		depsgraph.WithReadyFlag(func(a *application) *bool { return &a.dataReady }))
	texture := b.Node("texture",
		depsgraph.OnCreate(step("create texture")),
		depsgraph.OnDestroy(step("destroy texture")),
		depsgraph.WithReadyFlag(func(a *application) *bool { return &a.textureReady }))
	view := b.Node("textureview",
		depsgraph.OnCreate(step("create textureview")),
		depsgraph.OnDestroy(step("destroy textureview")),
		depsgraph.WithReadyFlag(func(a *application) *bool { return &a.viewReady }))
	b.DependsOn(data, path).DependsOn(texture, data).DependsOn(view, texture)

	g, err := b.Build()
	if err != nil {
		panic(err)
	}

	app := &application{pathReady: true, dataReady: true, textureReady: true}
	// The file behind path changed; textureview never existed.
	_ = g.Rebuild(app, path)
	fmt.Println("textureview ready:", app.viewReady)
	// Output:
	// destroy texture
	// destroy data
	// destroy path
	// create path
	// create data
	// create texture
	// textureview ready: false
}

func ExampleGraph_PrintDependencies() {
	b := depsgraph.NewBuilder[depsgraph.NoOwner]()
	window := b.Node("window")
	device := b.Node("device")
	swapchain := b.Node("swapchain")
	pipeline := b.Node("pipeline")
	b.DependsOn(device, window).
		DependsOn(swapchain, device).
		DependsOn(swapchain, window).
		DependsOn(pipeline, swapchain).
		DependsOn(pipeline, device)

	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	_ = g.PrintDependencies(os.Stdout, pipeline)
	// Output:
	// pipeline
	//   swapchain
	//     device
	//       window
	//     window
	//   device (*)
}

func ExampleGraph_AllDependees() {
	b := depsgraph.NewBuilder[depsgraph.NoOwner]()
	config := b.Node("config")
	db := b.Node("db")
	cache := b.Node("cache")
	api := b.Node("api")
	b.DependsOn(db, config).DependsOn(cache, config).DependsOn(api, db).DependsOn(api, cache)

	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	fmt.Println("dependees of config:", g.Names(g.AllDependees(config)))
	fmt.Println("dependencies of api:", g.Names(g.AllDependencies(api)))
	// Output:
	// dependees of config: [db cache api]
	// dependencies of api: [config db cache]
}
