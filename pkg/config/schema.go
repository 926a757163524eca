package config

// Schema is the JSON schema for validating inventory files
const Schema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "type": "object",
    "properties": {
        "content": {
            "type": "string",
            "minLength": 1,
            "description": "Local path of the content to push (a leading ~ is expanded)"
        },
        "log-level": {
            "type": "string",
            "enum": ["debug", "info", "warn", "error"]
        },
        "log-format": {
            "type": "string",
            "enum": ["json", "console"]
        },
        "max-concurrent-pushes": {
            "type": "integer",
            "minimum": 1
        },
        "servers": {
            "type": "object",
            "minProperties": 1,
            "additionalProperties": {
                "type": "object",
                "properties": {
                    "uri": {
                        "type": "string",
                        "minLength": 1
                    },
                    "user": {
                        "type": "string"
                    },
                    "password": {
                        "type": "string"
                    },
                    "description": {
                        "type": "string"
                    },
                    "path-prefix": {
                        "type": "string",
                        "minLength": 1
                    },
                    "type": {
                        "type": "string",
                        "enum": ["ssh", "local", "s3", "backblaze"]
                    },
                    "port": {
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 65535
                    },
                    "key-path": {
                        "type": "string"
                    },
                    "key-passphrase": {
                        "type": "string"
                    },
                    "enabled": {
                        "type": "boolean"
                    },
                    "region": {
                        "type": "string"
                    },
                    "bucket": {
                        "type": "string"
                    },
                    "access-key-id": {
                        "type": "string"
                    },
                    "secret-access-key": {
                        "type": "string"
                    },
                    "endpoint": {
                        "type": "string"
                    },
                    "force-path-style": {
                        "type": "boolean"
                    },
                    "account-id": {
                        "type": "string"
                    },
                    "application-key": {
                        "type": "string"
                    }
                },
                "required": ["uri", "path-prefix"]
            }
        }
    },
    "required": ["content", "servers"]
}`
