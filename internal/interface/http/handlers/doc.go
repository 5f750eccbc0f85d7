// Package handlers contains reusable pieces of the HTTP layer that do not
// depend on the application: the composite health checker and generic
// middleware.
//
//	checker := handlers.NewCompositeHealthChecker("0.1.0")
//	checker.AddCheck("database", handlers.NewPingCheck(conn))
//	checker.AddCheck("cache", handlers.NewPingCheck(redisCache))
//
//	status := checker.Check(ctx)
package handlers
