/*
	Package portal provides the logging, versioning and small file utilities
	that every other ngportal package depends on.  It has no dependencies on
	other ngportal packages.
*/
package portal
