// Package hclplan loads provisioning plans written in HCL.
//
// A plan document declares inputs, target environments and the ordered
// provisioning steps:
//
//	variable "bancor_network" {
//	  description = "Address of the pre-existing Bancor network contract."
//	}
//
//	environment "mainnet" {
//	  client   = "socketio"
//	  endpoint = "http://deployer:3000"
//	  variables = {
//	    bancor_network = "0x..."
//	  }
//	}
//
//	step "PermittedAddresses" "permitted" {}
//
//	step "SmartFundRegistry" "registry" {
//	  args       = [step.permitted, var.bancor_network, 1000]
//	  depends_on = [step.permitted]
//	}
//
// Steps run in declaration order. When several files are loaded, files are
// taken in the order given (directories contribute their .hcl files in
// lexical order).
package hclplan
