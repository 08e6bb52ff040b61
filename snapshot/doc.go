// Package snapshot loads a resolved configuration from a Starlark snapshot
// file.
//
// A snapshot records what graph resolution produced for one configuration:
//
//	configuration(name = "compile", project = ":app")
//
//	component(
//	    "com.google.guava:guava:33.0",
//	    variants = [
//	        variant(
//	            name = "jar",
//	            attributes = {"format": "jar"},
//	            artifacts = ["repo/guava-33.0.jar"],
//	        ),
//	        variant(
//	            name = "sources",
//	            attributes = {"format": "sources"},
//	            artifacts = ["repo/guava-33.0-sources.jar"],
//	        ),
//	    ],
//	)
//
//	files(paths = ["libs/local.jar"], built_by = [":app:generateLocal"])
//
//	unresolved("org.missing:lib:1.0", reason = "network timeout")
//
//	transform(
//	    name = "unzip",
//	    from_attributes = {"format": "jar"},
//	    to_attributes = {"format": "classes"},
//	    suffix = "-classes",
//	)
//
// Relative artifact paths are resolved against Options.BaseDir. Problems are
// collected with their positions rather than stopping at the first one;
// unknown statements and arguments are reported as warnings.
package snapshot
