// Package loader registers HTTP features on the Fiber router.
//
// A Feature reports its name, whether it is enabled, and mounts its routes in
// Load. Manager.LoadAll skips disabled features and stops at the first error,
// naming the feature that failed.
//
//	mgr := loader.NewManager(log)
//	mgr.Register(userimport.NewFeature(importSvc))
//	mgr.Register(resolver.NewFeature(resolverSvc))
//	err := mgr.LoadAll(app)
package loader
