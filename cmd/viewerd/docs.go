package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           viewerd API
// @version         1.0
// @description     HTTP API for multi-viewport image stack loading and synchronization.
//
// @contact.name   viewerd maintainers
// @contact.url    https://github.com/your-org/viewerd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
