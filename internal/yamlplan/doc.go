// Package yamlplan loads provisioning plans written as YAML documents.
//
//	variables:
//	  platform_fee:
//	    default: 1000
//	environments:
//	  kovan:
//	    client: httpapi
//	    endpoint: https://deployer.internal
//	steps:
//	  - name: permitted
//	    descriptor: PermittedAddresses
//	  - name: registry
//	    descriptor: SmartFundRegistry
//	    args: [!ref permitted, !var platform_fee, "0x0", !expr 'var.platform_fee * 2']
//	    depends_on: [permitted]
//
// References and variables may also be written as single-key maps,
// `{ref: permitted}` and `{var: platform_fee}`.
package yamlplan
