// Package aclproxy implements the ACL data channel of a Bluetooth
// host-controller proxy: credit accounting for the proxy's own
// outbound traffic, BR/EDR and LE connection tracking from HCI events,
// L2CAP fragment recombination, and selective interposition on ACL
// data frames crossing between host and controller.
package aclproxy
