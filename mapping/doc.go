// Package mapping parses and validates the vector field mapping a host
// engine hands to the k-NN core.
//
// A field mapping looks like:
//
//	{
//	  "type": "knn_vector",
//	  "dimension": 128,
//	  "data_type": "float",
//	  "space_type": "innerproduct",
//	  "engine": "faiss",
//	  "parameters": {"m": 24, "ef_construction": 128}
//	}
//
// Missing engine and space type are filled in by ResolveDefaults.
package mapping
