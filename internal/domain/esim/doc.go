// Package esim contains the eSIM provisioning bounded context.
// It describes what the storefront sells (a country catalog of data plans)
// and what it receives after purchase (an order with installation material).
//
// Key concepts:
//   - Catalog: country, operator and plans offered for one country
//   - Order: the provisioned eSIM with its installation artifacts
//   - AccessToken: bearer credential for the provisioning provider
//   - Gateway: port interface for the provisioning provider
//   - TokenStore: port interface for the shared access token cache
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package esim
