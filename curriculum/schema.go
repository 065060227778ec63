package curriculum

// documentSchema constrains an import document after YAML decoding.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["topics"],
  "additionalProperties": false,
  "properties": {
    "topics": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1, "maxLength": 100},
          "order": {"type": "integer"},
          "prize": {"type": "number", "minimum": 0},
          "modules": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title"],
              "additionalProperties": false,
              "properties": {
                "title": {"type": "string", "minLength": 1, "maxLength": 200},
                "description": {"type": "string"},
                "order": {"type": "integer"},
                "difficulty_level": {"enum": ["beginner", "intermediate", "hard"]},
                "main_contents": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["title"],
                    "additionalProperties": false,
                    "properties": {
                      "title": {"type": "string", "minLength": 1, "maxLength": 200},
                      "description": {"type": "string"},
                      "order": {"type": "integer"},
                      "pages": {
                        "type": "array",
                        "items": {
                          "type": "object",
                          "required": ["content"],
                          "additionalProperties": false,
                          "properties": {
                            "title": {"type": "string", "maxLength": 200},
                            "content": {"type": "string"},
                            "order": {"type": "integer"},
                            "time_duration": {"type": "integer", "minimum": 0},
                            "video_id": {"type": "string"}
                          }
                        }
                      },
                      "quiz": {
                        "type": "object",
                        "required": ["title", "questions"],
                        "additionalProperties": false,
                        "properties": {
                          "title": {"type": "string", "minLength": 1, "maxLength": 200},
                          "questions": {
                            "type": "array",
                            "minItems": 1,
                            "items": {
                              "type": "object",
                              "required": ["text", "choices"],
                              "additionalProperties": false,
                              "properties": {
                                "text": {"type": "string", "minLength": 1},
                                "choices": {
                                  "type": "array",
                                  "minItems": 2,
                                  "contains": {
                                    "type": "object",
                                    "required": ["correct"],
                                    "properties": {"correct": {"const": true}}
                                  },
                                  "items": {
                                    "type": "object",
                                    "required": ["text"],
                                    "additionalProperties": false,
                                    "properties": {
                                      "text": {"type": "string", "minLength": 1, "maxLength": 200},
                                      "correct": {"type": "boolean"}
                                    }
                                  }
                                }
                              }
                            }
                          }
                        }
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`
